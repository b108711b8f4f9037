package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/groomhub/internal/app/features/authgoogle"
	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func newHandler(t *testing.T, clientID, clientSecret string) *authgoogle.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return authgoogle.NewHandler(
		db,
		newTestSessionManager(t),
		uierrors.NewErrorLogger(logger),
		clientID,
		clientSecret,
		"http://localhost:8080",
		logger,
	)
}

func TestIsConfigured(t *testing.T) {
	if !newHandler(t, "test-client-id", "test-client-secret").IsConfigured() {
		t.Error("IsConfigured() should be true with client ID and secret")
	}
	if newHandler(t, "", "").IsConfigured() {
		t.Error("IsConfigured() should be false without credentials")
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	handler := newHandler(t, "", "")

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_not_configured") {
		t.Errorf("Location = %q, want to contain 'google_not_configured'", loc)
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	handler := newHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/google?return=/dispatch", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("Location = %q, want to contain 'accounts.google.com'", loc)
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	handler := newHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?code=test-code", nil)
	rec := httptest.NewRecorder()

	handler.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid_state") {
		t.Errorf("Location = %q, want to contain 'invalid_state'", loc)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	handler := newHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?state=bogus&code=test-code", nil)
	rec := httptest.NewRecorder()

	handler.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid_state") {
		t.Errorf("Location = %q, want to contain 'invalid_state'", loc)
	}
}

func TestServeCallback_GoogleError(t *testing.T) {
	handler := newHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()

	handler.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_denied") {
		t.Errorf("Location = %q, want to contain 'google_denied'", loc)
	}
}
