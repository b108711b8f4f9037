// internal/app/features/errors/htmx.go
package errors

import (
	"html/template"
	"net/http"
)

// IsHTMX reports whether the request came from an HTMX partial swap.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

var fragmentTmpl = template.Must(template.New("error_fragment").Parse(
	`<div class="error-banner" role="alert">{{.}}</div>`))

// HTMXError writes an inline error fragment for HTMX requests so the
// previous panel content stays on screen. For normal requests the
// fallback renders a full error page instead.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if !IsHTMX(r) {
		fallback()
		return
	}
	// 200 so HTMX swaps the fragment in; the error is the content.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = fragmentTmpl.Execute(w, msg)
}

// HTMXBadRequest writes an inline invalid-input fragment for HTMX
// requests, or a full bad-request page otherwise.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() {
		RenderBadRequest(w, r, msg, backURL)
	})
}

// HTMXForbidden writes an inline access-denied fragment for HTMX
// requests, or a full forbidden page otherwise.
func HTMXForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusForbidden, msg, func() {
		RenderForbidden(w, r, msg, backURL)
	})
}

// HTMXNotFound writes an inline not-found fragment for HTMX requests,
// or a full not-found page otherwise.
func HTMXNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusNotFound, msg, func() {
		RenderNotFound(w, r, msg, backURL)
	})
}
