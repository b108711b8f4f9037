// internal/app/features/callcenter/dashboard.go
package callcenter

import (
	"context"
	"net/http"
	"time"

	agentstore "github.com/dalemusser/groomhub/internal/app/store/agents"
	callstore "github.com/dalemusser/groomhub/internal/app/store/calls"
	"github.com/dalemusser/groomhub/internal/app/system/format"
	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

const dateLayout = "2006-01-02"

// parseFilters reads the dashboard filter state from the query string.
// When both dates are present and from > to, filterError is set and
// the caller must not fetch.
func parseFilters(r *http.Request) (filters, string) {
	f := filters{
		FromRaw: normalize.QueryParam(query.Get(r, "from")),
		ToRaw:   normalize.QueryParam(query.Get(r, "to")),
		Agent:   normalize.FilterParam(query.Get(r, "agent")),
		Status:  normalize.FilterParam(query.Get(r, "status")),
		Seq:     normalize.QueryParam(query.Get(r, "seq")),
	}

	if f.FromRaw != "" {
		if t, err := time.Parse(dateLayout, f.FromRaw); err == nil {
			f.From = t.UTC()
		}
	}
	if f.ToRaw != "" {
		if t, err := time.Parse(dateLayout, f.ToRaw); err == nil {
			f.To = t.UTC()
		}
	}

	// Default to today when nothing was picked
	if f.From.IsZero() && f.To.IsZero() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		f.From, f.To = today, today
		f.FromRaw = today.Format(dateLayout)
		f.ToRaw = today.Format(dateLayout)
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, "Start date must be on or before the end date."
	}
	return f, ""
}

// ServeDashboard renders the call center dashboard page.
// GET /callcenter
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	f, filterErr := parseFilters(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := pageData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Call Center", "/"),
		Statuses: statusOptions,
	}

	if filterErr != "" {
		data.Table = tableData{Seq: f.Seq, FilterError: filterErr, Filters: f}
		templates.Render(w, r, "callcenter", data)
		return
	}

	table, err := h.fetchTable(ctx, f, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading call dashboard", err, "A database error occurred.", "/")
		return
	}
	data.Table = table

	templates.Render(w, r, "callcenter", data)
}

// ServeCallsTable re-renders only the cards + table fragment.
// GET /callcenter/calls-table
func (h *Handler) ServeCallsTable(w http.ResponseWriter, r *http.Request) {
	f, filterErr := parseFilters(r)

	if filterErr != "" {
		// Leave the previous table alone; swap only the warning slot.
		w.Header().Set("HX-Retarget", "#filter-warning")
		w.Header().Set("HX-Reswap", "innerHTML")
		templates.Render(w, r, "callcenter_warning", tableData{Seq: f.Seq, FilterError: filterErr})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	table, err := h.fetchTable(ctx, f, r)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error loading call table", err, "Failed to fetch call data.", "/callcenter")
		return
	}

	templates.Render(w, r, "callcenter_table", table)
}

// fetchTable loads agent stats and the detailed call page for the
// current filters.
func (h *Handler) fetchTable(ctx context.Context, f filters, r *http.Request) (tableData, error) {
	agents := agentstore.New(h.DB)
	calls := callstore.New(h.DB)

	names, err := agents.NameMap(ctx)
	if err != nil {
		return tableData{}, err
	}

	stats, err := calls.FetchAgentStats(ctx, f.toFilter(), names)
	if err != nil {
		return tableData{}, err
	}

	before := query.Get(r, "before")
	after := query.Get(r, "after")
	page, err := calls.ListDetailed(ctx, f.toFilter(), before, after)
	if err != nil {
		return tableData{}, err
	}

	total, err := calls.CountInRange(ctx, f.toFilter())
	if err != nil {
		return tableData{}, err
	}

	table := tableData{
		Seq:        f.Seq,
		Filters:    f,
		Total:      total,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
	}

	for _, s := range stats {
		table.Cards = append(table.Cards, agentCard{
			AgentNumber:       s.AgentNumber,
			AgentName:         s.AgentName,
			IncomingSuccess:   s.IncomingSuccess,
			IncomingFailed:    s.IncomingFailed,
			OutgoingSuccess:   s.OutgoingSuccess,
			OutgoingFailed:    s.OutgoingFailed,
			TotalCalls:        s.TotalCalls(),
			DistinctCustomers: s.DistinctCustomers,
			TalkTime:          format.Duration(s.TotalTalkSeconds),
		})
	}

	for _, c := range page.Calls {
		table.Rows = append(table.Rows, callRow{
			AgentName:      agentstore.DisplayName(names, c.AgentNumber),
			CustomerNumber: c.CustomerNumber,
			CustomerName:   c.CustomerName,
			Direction:      c.Direction,
			Status:         c.Status,
			Succeeded:      models.CallSucceeded(c.Status),
			StartTime:      format.Clock(c.StartTime),
			Duration:       format.Duration(c.DurationSeconds),
		})
	}

	// Dropdown options: known agents plus the no-agent bucket
	table.AgentOpts = append(table.AgentOpts, agentOption{Value: "all", Label: "All Agents"})
	agentList, err := agents.List(ctx)
	if err != nil {
		return tableData{}, err
	}
	for _, a := range agentList {
		table.AgentOpts = append(table.AgentOpts, agentOption{Value: a.Number, Label: a.Name})
	}
	table.AgentOpts = append(table.AgentOpts, agentOption{Value: "none", Label: agentstore.NoAgentLabel})

	return table, nil
}
