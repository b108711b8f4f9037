// internal/app/features/dispatch/routes.go
package dispatch

import (
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the dispatch board.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin", "admin", "manager", "driver"))

		pr.Get("/", h.ServeDashboard)
		pr.Get("/requests", h.ServeRequests)
		pr.Post("/requests/{id}/status", h.ServeUpdateStatus)
		pr.Post("/requests/{id}/driver", h.ServeAssignDriver)
		pr.Get("/financials", h.ServeFinancials)
	})

	return r
}
