// internal/app/features/locationmap/routes.go
package locationmap

import (
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the customer location map.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin", "admin", "manager"))

		pr.Get("/", h.ServeMap)
		pr.Get("/locations", h.ServeLocations)
	})

	return r
}
