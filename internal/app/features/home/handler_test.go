package home_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/groomhub/internal/app/features/home"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.uber.org/zap"
)

// renderSafe runs a handler func, swallowing template-registry panics
// so handler logic before the render can still be asserted.
func renderSafe(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestServeRoot_SignedInRedirectsByRole(t *testing.T) {
	handler := home.NewHandler(nil, zap.NewNop())

	cases := []struct {
		user testutil.TestUser
		want string
	}{
		{testutil.ManagerUser(), "/callcenter"},
		{testutil.AgentUser("101"), "/callcenter"},
		{testutil.DriverUser(), "/dispatch"},
	}

	for _, tc := range cases {
		req := testutil.NewAuthenticatedRequest("GET", "/", tc.user)
		rec := httptest.NewRecorder()
		handler.ServeRoot(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", tc.user.Role, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != tc.want {
			t.Errorf("%s: redirect = %q, want %q", tc.user.Role, got, tc.want)
		}
	}
}

func TestServeRoot_AnonymousRendersLanding(t *testing.T) {
	handler := home.NewHandler(nil, zap.NewNop())

	req := testutil.NewRequest("GET", "/")
	rec := httptest.NewRecorder()

	renderSafe(func() { handler.ServeRoot(rec, req) })

	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("anonymous request redirected to %q", loc)
	}
}
