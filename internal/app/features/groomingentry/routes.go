// internal/app/features/groomingentry/routes.go
package groomingentry

import (
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for grooming data entry.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin", "admin", "manager", "driver"))

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeEntry)
		pr.Post("/{id}/draft", h.ServeSaveDraft)
		pr.Post("/{id}/suggestion", h.ServeSaveSuggestion)
		pr.Post("/{id}/photos", h.ServeUploadPhotos)
		pr.Post("/{id}/photos/{photoID}/delete", h.ServeDeletePhoto)
	})

	return r
}
