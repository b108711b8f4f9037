// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin", "admin"))

		pr.Get("/", h.ServeSettings)
		pr.Post("/", h.HandleSettings)
	})

	return r
}
