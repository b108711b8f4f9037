package dispatch_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/groomhub/internal/app/features/dispatch"
	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	srstore "github.com/dalemusser/groomhub/internal/app/store/servicerequests"
	userstore "github.com/dalemusser/groomhub/internal/app/store/users"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *dispatch.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return dispatch.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
}

// renderSafe runs a handler func, swallowing template-registry panics
// so handler logic before the render can still be asserted.
func renderSafe(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func postForm(path string, form url.Values, user testutil.TestUser) *http.Request {
	req := testutil.NewFormRequest("POST", path, form, user)
	req.Header.Set("HX-Request", "true")
	return req
}

func TestServeRequests_RejectsInvertedDateRange(t *testing.T) {
	logger := zap.NewNop()
	handler := dispatch.NewHandler(nil, uierrors.NewErrorLogger(logger), logger)

	req := testutil.NewAuthenticatedRequest("GET", "/dispatch/requests?from=2025-06-10&to=2025-06-01", testutil.ManagerUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeRequests(rec, req) })

	if got := rec.Header().Get("HX-Retarget"); got != "#dispatch-warning" {
		t.Errorf("HX-Retarget = %q, want #dispatch-warning", got)
	}
}

func TestServeUpdateStatus_UnknownStatusIs400(t *testing.T) {
	handler := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, handler.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cust := fixtures.CreateCustomer(ctx, "Priya Raman")
	sr := fixtures.CreateServiceRequest(ctx, cust, models.StatusScheduled, time.Now().UTC(), 500)

	req := postForm("/dispatch/requests/"+sr.ID.Hex()+"/status", url.Values{"status": {"Misplaced"}}, testutil.ManagerUser())
	req = testutil.WithChiURLParam(req, "id", sr.ID.Hex())
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeUpdateStatus(rec, req) })

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("HX-Retarget"); got != "#dispatch-warning" {
		t.Errorf("HX-Retarget = %q, want #dispatch-warning", got)
	}

	// The stored status must be untouched
	got, err := srstore.New(handler.DB).GetByID(ctx, sr.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusScheduled {
		t.Errorf("status changed to %q on rejected update", got.Status)
	}
}

func TestServeUpdateStatus_CompletedStampsDate(t *testing.T) {
	handler := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, handler.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cust := fixtures.CreateCustomer(ctx, "Priya Raman")
	sr := fixtures.CreateServiceRequest(ctx, cust, models.StatusScheduled, time.Now().UTC(), 500)

	req := postForm("/dispatch/requests/"+sr.ID.Hex()+"/status", url.Values{"status": {models.StatusCompleted}}, testutil.ManagerUser())
	req = testutil.WithChiURLParam(req, "id", sr.ID.Hex())
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeUpdateStatus(rec, req) })

	got, err := srstore.New(handler.DB).GetByID(ctx, sr.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, models.StatusCompleted)
	}
	if got.CompletedDate == nil {
		t.Error("completed_date not stamped")
	}
}

func TestServeAssignDriver_ManagerAssigns(t *testing.T) {
	handler := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, handler.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	driver, err := userstore.New(handler.DB).Create(ctx, models.User{
		FullName: "Ravi Kumar",
		Email:    "ravi@example.com",
		Role:     "driver",
		Status:   userstore.StatusActive,
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}

	cust := fixtures.CreateCustomer(ctx, "Priya Raman")
	sr := fixtures.CreateServiceRequest(ctx, cust, models.StatusPendingAssignment, time.Now().UTC(), 500)

	req := postForm("/dispatch/requests/"+sr.ID.Hex()+"/driver", url.Values{"driver_id": {driver.ID.Hex()}}, testutil.ManagerUser())
	req = testutil.WithChiURLParam(req, "id", sr.ID.Hex())
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeAssignDriver(rec, req) })

	got, err := srstore.New(handler.DB).GetByID(ctx, sr.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DriverID == nil || *got.DriverID != driver.ID {
		t.Errorf("driver not assigned: %+v", got.DriverID)
	}
	if got.DriverName != "Ravi Kumar" {
		t.Errorf("driver name = %q", got.DriverName)
	}
}

func TestServeAssignDriver_DriverCannotAssign(t *testing.T) {
	handler := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, handler.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cust := fixtures.CreateCustomer(ctx, "Priya Raman")
	sr := fixtures.CreateServiceRequest(ctx, cust, models.StatusPendingAssignment, time.Now().UTC(), 500)

	req := postForm("/dispatch/requests/"+sr.ID.Hex()+"/driver", url.Values{"driver_id": {sr.ID.Hex()}}, testutil.DriverUser())
	req = testutil.WithChiURLParam(req, "id", sr.ID.Hex())
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeAssignDriver(rec, req) })

	got, err := srstore.New(handler.DB).GetByID(ctx, sr.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DriverID != nil {
		t.Error("driver role must not be able to assign")
	}
}

func TestServeFinancials_ValidRange(t *testing.T) {
	handler := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, handler.DB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cust := fixtures.CreateCustomer(ctx, "Priya Raman")
	fixtures.CreateServiceRequest(ctx, cust, models.StatusCompleted, time.Now().UTC(), 1200)

	req := testutil.NewAuthenticatedRequest("GET", "/dispatch/financials", testutil.ManagerUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeFinancials(rec, req) })

	if got := rec.Header().Get("HX-Retarget"); got != "" {
		t.Errorf("HX-Retarget = %q, want empty", got)
	}
}
