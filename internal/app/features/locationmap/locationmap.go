// internal/app/features/locationmap/locationmap.go
package locationmap

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	customerstore "github.com/dalemusser/groomhub/internal/app/store/customers"
	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type pageData struct {
	viewdata.BaseVM
	LeadStatuses []string
	Selected     string
}

// ServeMap renders the map page with the lead-status filter.
// GET /map
func (h *Handler) ServeMap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	statuses, err := customerstore.New(h.DB).LeadStatuses(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading lead statuses", err, "A database error occurred.", "/")
		return
	}

	templates.Render(w, r, "locationmap", pageData{
		BaseVM:       viewdata.NewBaseVM(r, h.DB, "Customer Map", "/"),
		LeadStatuses: statuses,
		Selected:     normalize.FilterParam(query.Get(r, "status")),
	})
}

// ServeLocations returns customer pins as JSON, honoring the
// lead-status and viewport-bounds filters.
// GET /map/locations
func (h *Handler) ServeLocations(w http.ResponseWriter, r *http.Request) {
	leadStatus := normalize.FilterParam(query.Get(r, "status"))

	bounds, err := parseBounds(r)
	if err != nil {
		h.Log.Warn("malformed bounds on map request", zap.Error(err))
		http.Error(w, "malformed bounds", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	locs, err := customerstore.New(h.DB).Locations(ctx, leadStatus, bounds)
	if err != nil {
		h.Log.Error("database error loading map pins", zap.Error(err))
		http.Error(w, "failed to load locations", http.StatusInternalServerError)
		return
	}
	if locs == nil {
		locs = []customerstore.Location{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	if err := enc.Encode(locs); err != nil {
		h.Log.Error("encoding map pins failed", zap.Error(err))
	}
}

// parseBounds reads the optional viewport parameters. All four must be
// present to take effect.
func parseBounds(r *http.Request) (customerstore.Bounds, error) {
	raw := map[string]string{
		"min_lat": query.Get(r, "min_lat"),
		"max_lat": query.Get(r, "max_lat"),
		"min_lng": query.Get(r, "min_lng"),
		"max_lng": query.Get(r, "max_lng"),
	}
	for _, v := range raw {
		if v == "" {
			return customerstore.Bounds{}, nil
		}
	}

	vals := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return customerstore.Bounds{}, err
		}
		vals[k] = f
	}

	return customerstore.Bounds{
		MinLat: vals["min_lat"],
		MaxLat: vals["max_lat"],
		MinLng: vals["min_lng"],
		MaxLng: vals["max_lng"],
	}, nil
}
