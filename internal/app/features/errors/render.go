// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it defaults to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	renderPage(w, r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows a friendly not-found page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows a friendly invalid-request page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusBadRequest, "Invalid request", msg, backURL)
}

// RenderServerError shows a friendly server-error page. The message
// should be the fixed user-facing text, never the underlying error.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderPage(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}
