// internal/app/features/dispatch/dispatch.go
package dispatch

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	srstore "github.com/dalemusser/groomhub/internal/app/store/servicerequests"
	userstore "github.com/dalemusser/groomhub/internal/app/store/users"
	"github.com/dalemusser/groomhub/internal/app/system/authz"
	"github.com/dalemusser/groomhub/internal/app/system/format"
	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	dateLayout    = "2006-01-02"
	displayLayout = "Mon 02 Jan 2006"
)

// parseFilters reads the board filter state. When from > to the
// returned message is non-empty and the caller must not fetch.
func parseFilters(r *http.Request) (filters, string) {
	f := filters{
		Status:  normalize.FilterParam(query.Get(r, "status")),
		FromRaw: normalize.QueryParam(query.Get(r, "from")),
		ToRaw:   normalize.QueryParam(query.Get(r, "to")),
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

	// Default to the coming week when nothing was picked
	if f.From.IsZero() && f.To.IsZero() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		f.From, f.To = today, today.AddDate(0, 0, 7)
		f.FromRaw = f.From.Format(dateLayout)
		f.ToRaw = f.To.Format(dateLayout)
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, "Start date must be on or before the end date."
	}
	return f, ""
}

// listFilter converts the parsed filters into a store filter, scoping
// drivers to their own assignments.
func listFilter(r *http.Request, f filters) srstore.ListFilter {
	lf := srstore.ListFilter{From: f.From, To: f.To}
	if f.Status != "" && f.Status != "all" {
		lf.Status = f.Status
	}
	if !authz.CanViewAllRequests(r) {
		if _, _, userID, ok := authz.UserCtx(r); ok {
			lf.DriverID = &userID
		}
	}
	return lf
}

// ServeDashboard renders the dispatch board page.
// GET /dispatch
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	f, filterErr := parseFilters(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := pageData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Dispatch", "/"),
		Statuses: statusChoices(),
	}

	if filterErr != "" {
		data.List = listData{Seq: f.Seq, StatusError: filterErr, Filters: f, Statuses: statusChoices()}
		templates.Render(w, r, "dispatch", data)
		return
	}

	list, err := h.fetchList(ctx, r, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading dispatch board", err, "A database error occurred.", "/")
		return
	}
	data.List = list

	templates.Render(w, r, "dispatch", data)
}

// ServeRequests re-renders only the request list fragment.
// GET /dispatch/requests
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	f, filterErr := parseFilters(r)

	if filterErr != "" {
		w.Header().Set("HX-Retarget", "#dispatch-warning")
		w.Header().Set("HX-Reswap", "innerHTML")
		templates.Render(w, r, "dispatch_warning", listData{Seq: f.Seq, StatusError: filterErr})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.fetchList(ctx, r, f)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error loading dispatch list", err, "Failed to fetch service requests.", "/dispatch")
		return
	}

	templates.Render(w, r, "dispatch_list", list)
}

// ServeUpdateStatus changes a request status and re-renders the list.
// An unknown status is a 400 with an inline message; the list itself
// stays as it was.
// POST /dispatch/requests/{id}/status
func (h *Handler) ServeUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.HTMXNotFound(w, r, "That service request does not exist.", "/dispatch")
		return
	}

	status := normalize.QueryParam(r.FormValue("status"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := srstore.New(h.DB).UpdateStatus(ctx, id, status); err != nil {
		switch err {
		case srstore.ErrInvalidStatus:
			w.Header().Set("HX-Retarget", "#dispatch-warning")
			w.Header().Set("HX-Reswap", "innerHTML")
			w.WriteHeader(http.StatusBadRequest)
			templates.Render(w, r, "dispatch_warning", listData{StatusError: "Unknown status: " + status})
		case srstore.ErrNotFound:
			uierrors.HTMXNotFound(w, r, "That service request does not exist.", "/dispatch")
		default:
			h.ErrLog.HTMXLogServerError(w, r, "database error updating request status", err, "Failed to update the request.", "/dispatch")
		}
		return
	}

	h.Log.Info("service request status updated",
		zap.String("request_id", id.Hex()),
		zap.String("status", status))

	f, _ := parseFilters(r)
	list, err := h.fetchList(ctx, r, f)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error reloading dispatch list", err, "Failed to fetch service requests.", "/dispatch")
		return
	}
	templates.Render(w, r, "dispatch_list", list)
}

// ServeAssignDriver assigns a driver to a request and re-renders the
// list. Drivers cannot reassign work to themselves or others.
// POST /dispatch/requests/{id}/driver
func (h *Handler) ServeAssignDriver(w http.ResponseWriter, r *http.Request) {
	if !authz.CanViewAllRequests(r) {
		uierrors.HTMXForbidden(w, r, "Only managers can assign drivers.", "/dispatch")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.HTMXNotFound(w, r, "That service request does not exist.", "/dispatch")
		return
	}
	driverID, err := primitive.ObjectIDFromHex(normalize.QueryParam(r.FormValue("driver_id")))
	if err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "malformed driver id on assign", err, "Pick a driver to assign.", "/dispatch")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	driver, err := userstore.New(h.DB).GetDriverByID(ctx, driverID)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error loading driver", err, "Failed to assign the driver.", "/dispatch")
		return
	}
	if driver == nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "assign to unknown driver", nil, "That driver account does not exist.", "/dispatch")
		return
	}

	if err := srstore.New(h.DB).AssignDriver(ctx, id, driver.ID, driver.FullName); err != nil {
		if err == srstore.ErrNotFound {
			uierrors.HTMXNotFound(w, r, "That service request does not exist.", "/dispatch")
			return
		}
		h.ErrLog.HTMXLogServerError(w, r, "database error assigning driver", err, "Failed to assign the driver.", "/dispatch")
		return
	}

	f, _ := parseFilters(r)
	list, err := h.fetchList(ctx, r, f)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error reloading dispatch list", err, "Failed to fetch service requests.", "/dispatch")
		return
	}
	templates.Render(w, r, "dispatch_list", list)
}

// ServeFinancials renders the financial metrics fragment.
// GET /dispatch/financials
func (h *Handler) ServeFinancials(w http.ResponseWriter, r *http.Request) {
	f, filterErr := parseFilters(r)
	if filterErr != "" {
		w.Header().Set("HX-Retarget", "#dispatch-warning")
		w.Header().Set("HX-Reswap", "innerHTML")
		templates.Render(w, r, "dispatch_warning", listData{Seq: f.Seq, StatusError: filterErr})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	fin, err := srstore.New(h.DB).FetchFinancials(ctx, listFilter(r, f), time.Now().UTC())
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error loading dispatch financials", err, "Failed to fetch financials.", "/dispatch")
		return
	}

	templates.Render(w, r, "dispatch_financials", financialsData{
		Seq:             f.Seq,
		ScheduledTotal:  format.INR(fin.ScheduledTotal),
		CompletedTotal:  format.INR(fin.CompletedTotal),
		ThreeDayAverage: format.INR(fin.ThreeDayAverage),
		SevenDayAverage: format.INR(fin.SevenDayAverage),
	})
}

// fetchList loads the request rows for the current filters, plus the
// assign-driver options for managers.
func (h *Handler) fetchList(ctx context.Context, r *http.Request, f filters) (listData, error) {
	reqs, err := srstore.New(h.DB).List(ctx, listFilter(r, f))
	if err != nil {
		return listData{}, err
	}

	list := listData{
		Seq:       f.Seq,
		Filters:   f,
		CanAssign: authz.CanViewAllRequests(r),
		Statuses:  statusChoices(),
	}

	for _, sr := range reqs {
		row := requestRow{
			ID:            sr.ID.Hex(),
			CustomerName:  sr.CustomerName,
			DriverName:    sr.DriverName,
			Status:        sr.Status,
			ScheduledDate: sr.ScheduledDate.Format(displayLayout),
			Territory:     sr.Territory,
			Total:         format.INR(sr.TotalAmount),
			Unassigned:    sr.DriverID == nil,
		}
		if sr.CompletedDate != nil {
			row.CompletedDate = sr.CompletedDate.Format(displayLayout)
		}
		list.Rows = append(list.Rows, row)
	}

	if list.CanAssign {
		drivers, err := userstore.New(h.DB).ListDrivers(ctx)
		if err != nil {
			return listData{}, err
		}
		for _, d := range drivers {
			list.Drivers = append(list.Drivers, driverOption{ID: d.ID.Hex(), Name: d.FullName})
		}
	}

	return list, nil
}
