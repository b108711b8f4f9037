// internal/app/features/kpi/routes.go
package kpi

import (
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the business KPI dashboard.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin", "admin", "manager"))

		pr.Get("/", h.ServeDashboard)
		pr.Get("/revenue", h.ServeRevenue)
		pr.Get("/customer-growth", h.ServeCustomerGrowth)
		pr.Get("/monthly-revenue", h.ServeMonthlyRevenue)
		pr.Get("/arpu", h.ServeARPU)
		pr.Get("/top-customers", h.ServeTopCustomers)
		pr.Get("/breeds", h.ServeBreeds)
		pr.Get("/territories", h.ServeTerritories)
		pr.Get("/cohorts", h.ServeCohorts)
		pr.Get("/funnel", h.ServeFunnel)
	})

	return r
}
