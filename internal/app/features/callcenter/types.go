// internal/app/features/callcenter/types.go
package callcenter

import (
	"time"

	callstore "github.com/dalemusser/groomhub/internal/app/store/calls"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/groomhub/internal/domain/models"
)

// filters holds the parsed dashboard filter state for one request.
type filters struct {
	From   time.Time
	To     time.Time
	Agent  string
	Status string
	Seq    string

	// raw values echoed back into the form inputs
	FromRaw string
	ToRaw   string
}

// agentCard is one agent stat card.
type agentCard struct {
	AgentNumber       string
	AgentName         string
	IncomingSuccess   int
	IncomingFailed    int
	OutgoingSuccess   int
	OutgoingFailed    int
	TotalCalls        int
	DistinctCustomers int
	TalkTime          string
}

// callRow is one row of the detailed calls table.
type callRow struct {
	AgentName      string
	CustomerNumber string
	CustomerName   string
	Direction      string
	Status         string
	Succeeded      bool
	StartTime      string
	Duration       string
}

// tableData is the fragment view model for the cards + table region.
type tableData struct {
	Seq         string
	FilterError string
	Cards       []agentCard
	Rows        []callRow
	Total       int64
	HasPrev     bool
	HasNext     bool
	PrevCursor  string
	NextCursor  string
	Filters     filters
	AgentOpts   []agentOption
}

// agentOption is one entry in the agent filter dropdown.
type agentOption struct {
	Value string
	Label string
}

// pageData is the full dashboard page view model.
type pageData struct {
	viewdata.BaseVM
	Table    tableData
	Statuses []string
}

// statusOptions lists the call statuses offered in the filter dropdown.
var statusOptions = []string{
	models.CallStatusAnswer,
	models.CallStatusCompleted,
	"NO ANSWER",
	"BUSY",
	"FAILED",
}

// toFilter converts parsed filters into a store query.
func (f filters) toFilter() callstore.Filter {
	return callstore.Filter{
		From:   f.From,
		To:     f.To,
		Agent:  f.Agent,
		Status: f.Status,
	}
}
