package settings_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	"github.com/dalemusser/groomhub/internal/app/features/settings"
	settingsstore "github.com/dalemusser/groomhub/internal/app/store/settings"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *settings.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	// No storage backend; the tests below never reach a logo upload.
	return settings.NewHandler(db, nil, uierrors.NewErrorLogger(logger), logger)
}

// renderSafe runs a handler func, swallowing template-registry panics
// so handler logic before the render can still be asserted.
func renderSafe(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func postSettings(h *settings.Handler, fields map[string]string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		_ = mw.WriteField(name, value)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/settings", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	renderSafe(func() { h.HandleSettings(rec, req) })
	return rec
}

func TestHandleSettings_SavesAndRedirects(t *testing.T) {
	handler := newTestHandler(t)

	rec := postSettings(handler, map[string]string{
		"site_name":   "Paws & Claws",
		"footer_html": "<p>Open daily 9-6</p>",
	})

	if rec.Code != 303 {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/settings" {
		t.Errorf("Location = %q, want /settings", got)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	saved, err := settingsstore.New(handler.DB).Get(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.SiteName != "Paws & Claws" {
		t.Errorf("SiteName = %q, want Paws & Claws", saved.SiteName)
	}
	if saved.FooterHTML != "<p>Open daily 9-6</p>" {
		t.Errorf("FooterHTML = %q", saved.FooterHTML)
	}
}

func TestHandleSettings_SanitizesFooterHTML(t *testing.T) {
	handler := newTestHandler(t)

	postSettings(handler, map[string]string{
		"site_name":   "Paws & Claws",
		"footer_html": `<p>Hours</p><script>alert("x")</script>`,
	})

	ctx, cancel := testutil.TestContext()
	defer cancel()
	saved, err := settingsstore.New(handler.DB).Get(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.FooterHTML != "<p>Hours</p>" {
		t.Errorf("FooterHTML = %q, want script stripped", saved.FooterHTML)
	}
}

func TestHandleSettings_RequiresSiteName(t *testing.T) {
	handler := newTestHandler(t)

	rec := postSettings(handler, map[string]string{
		"site_name":   "   ",
		"footer_html": "<p>Footer</p>",
	})

	if got := rec.Header().Get("Location"); got != "" {
		t.Errorf("Location = %q, want no redirect on validation error", got)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	exists, err := settingsstore.New(handler.DB).Exists(ctx)
	if err != nil {
		t.Fatalf("check settings: %v", err)
	}
	if exists {
		t.Error("settings must not be saved when site name is blank")
	}
}

func TestHandleSettings_OverwritesExisting(t *testing.T) {
	handler := newTestHandler(t)

	postSettings(handler, map[string]string{"site_name": "First Name"})
	postSettings(handler, map[string]string{"site_name": "Second Name"})

	ctx, cancel := testutil.TestContext()
	defer cancel()
	saved, err := settingsstore.New(handler.DB).Get(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.SiteName != "Second Name" {
		t.Errorf("SiteName = %q, want Second Name", saved.SiteName)
	}

	count, err := handler.DB.Collection("site_settings").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("document count = %d, want the single settings document", count)
	}
}
