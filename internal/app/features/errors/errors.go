// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/groomhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

// Handler serves the standalone error pages. No DB needed; it just
// renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/")
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "/login")
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	role, name, _, signedIn := authz.UserCtx(r)
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{
		Title:      title,
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}
