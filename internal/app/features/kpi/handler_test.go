package kpi_test

import (
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	"github.com/dalemusser/groomhub/internal/app/features/kpi"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *kpi.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return kpi.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
}

// renderSafe runs a handler func, swallowing template-registry panics
// so handler logic before the render can still be asserted.
func renderSafe(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestServeRevenue_RejectsInvertedDateRange(t *testing.T) {
	logger := zap.NewNop()
	handler := kpi.NewHandler(nil, uierrors.NewErrorLogger(logger), logger)

	req := testutil.NewAuthenticatedRequest("GET", "/kpi/revenue?from=2025-06-01&to=2025-05-01", testutil.ManagerUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeRevenue(rec, req) })

	if got := rec.Header().Get("HX-Retarget"); got != "#kpi-warning" {
		t.Errorf("HX-Retarget = %q, want #kpi-warning", got)
	}
	if got := rec.Header().Get("HX-Reswap"); got != "innerHTML" {
		t.Errorf("HX-Reswap = %q, want innerHTML", got)
	}
}

func TestServeRevenue_ValidRangeFetches(t *testing.T) {
	handler := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, handler.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cust := fixtures.CreateCustomer(ctx, "Priya Raman")
	day := time.Date(2025, 5, 13, 10, 0, 0, 0, time.UTC)
	fixtures.CreateServiceRequest(ctx, cust, models.StatusCompleted, day, 1200)

	req := testutil.NewAuthenticatedRequest("GET", "/kpi/revenue?from=2025-05-01&to=2025-05-31", testutil.ManagerUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeRevenue(rec, req) })

	if got := rec.Header().Get("HX-Retarget"); got != "" {
		t.Errorf("HX-Retarget = %q, want empty", got)
	}
}

func TestFragments_EmptyDataStillRender(t *testing.T) {
	handler := newTestHandler(t)

	endpoints := map[string]func(w *httptest.ResponseRecorder){
		"/kpi/customer-growth": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/customer-growth?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeCustomerGrowth(w, req) })
		},
		"/kpi/monthly-revenue": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/monthly-revenue?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeMonthlyRevenue(w, req) })
		},
		"/kpi/arpu": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/arpu?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeARPU(w, req) })
		},
		"/kpi/top-customers": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/top-customers?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeTopCustomers(w, req) })
		},
		"/kpi/breeds": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/breeds?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeBreeds(w, req) })
		},
		"/kpi/territories": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/territories?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeTerritories(w, req) })
		},
		"/kpi/cohorts": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/cohorts?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeCohorts(w, req) })
		},
		"/kpi/funnel": func(w *httptest.ResponseRecorder) {
			req := testutil.NewAuthenticatedRequest("GET", "/kpi/funnel?from=2030-01-01&to=2030-02-01", testutil.ManagerUser())
			renderSafe(func() { handler.ServeFunnel(w, req) })
		},
	}

	for path, call := range endpoints {
		rec := httptest.NewRecorder()
		call(rec)
		if got := rec.Header().Get("HX-Retarget"); got != "" {
			t.Errorf("%s: HX-Retarget = %q, want empty", path, got)
		}
	}
}

func TestServeDashboard_DefaultsRange(t *testing.T) {
	handler := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/kpi", testutil.ManagerUser())
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeDashboard(rec, req) })
}
