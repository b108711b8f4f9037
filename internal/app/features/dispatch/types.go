// internal/app/features/dispatch/types.go
package dispatch

import (
	"time"

	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/groomhub/internal/domain/models"
)

// filters is the parsed request-list filter set.
type filters struct {
	Status  string
	From    time.Time
	To      time.Time
	FromRaw string
	ToRaw   string
	Seq     string
}

// requestRow is one service request row on the board.
type requestRow struct {
	ID            string
	CustomerName  string
	DriverName    string
	Status        string
	ScheduledDate string
	CompletedDate string
	Territory     string
	Total         string
	Unassigned    bool
}

// driverOption is one entry in the assign-driver select.
type driverOption struct {
	ID   string
	Name string
}

// listData backs the request-list fragment.
type listData struct {
	Seq         string
	StatusError string
	Rows        []requestRow
	Filters     filters
	CanAssign   bool
	Drivers     []driverOption
	Statuses    []string
}

// financialsData backs the financial metrics fragment.
type financialsData struct {
	Seq             string
	ScheduledTotal  string
	CompletedTotal  string
	ThreeDayAverage string
	SevenDayAverage string
}

// pageData is the dispatch page shell view model.
type pageData struct {
	viewdata.BaseVM
	List     listData
	Statuses []string
}

func statusChoices() []string {
	return models.ValidStatuses
}
