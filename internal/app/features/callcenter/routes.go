// internal/app/features/callcenter/routes.go
package callcenter

import (
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the call center dashboard.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin", "admin", "manager", "agent"))

		pr.Get("/", h.ServeDashboard)
		pr.Get("/calls-table", h.ServeCallsTable)
	})

	return r
}
