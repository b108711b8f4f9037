// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

// ServeRoot renders the landing page, or sends signed-in users to
// their working panel.
// GET /
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, panelFor(u.Role), http.StatusSeeOther)
		return
	}

	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Welcome", "/"),
	}

	templates.Render(w, r, "home", data)
}

// panelFor picks the default panel for a role.
func panelFor(role string) string {
	switch role {
	case "driver":
		return "/dispatch"
	case "agent":
		return "/callcenter"
	default:
		return "/callcenter"
	}
}
