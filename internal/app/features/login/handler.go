// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/dalemusser/groomhub/internal/app/system/ratelimit"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	userstore "github.com/dalemusser/groomhub/internal/app/store/users"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the email/password sign-in form for staff accounts.
type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Users         *userstore.Store
	Limiter       *ratelimit.LoginLimiter
	GoogleEnabled bool
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Users:         userstore.New(db),
		Limiter:       ratelimit.NewLoginLimiter(),
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign In", "/login"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login rate limited",
			zap.String("email", email),
			zap.String("reason", reason))
		h.renderFormWithError(w, r, "Too many sign-in attempts. Please wait a few minutes and try again.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user lookup failed", err, "Something went wrong. Please try again.", "/login")
		return
	}

	if u.Status == userstore.StatusDisabled {
		h.renderFormWithError(w, r, "This account has been disabled. Please contact an administrator.", email)
		return
	}

	if !userstore.VerifyPassword(u, password) {
		h.Log.Info("login failed", zap.String("email", u.Email))
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "session creation failed", err, "Could not sign you in. Please try again.", "/login")
		return
	}
	h.Limiter.ResetEmail(u.Email)

	h.Log.Info("login succeeded",
		zap.String("email", u.Email),
		zap.String("role", u.Role))

	dest := urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "/")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign In", "/login"),
		Error:         msg,
		Email:         email,
		ReturnURL:     strings.TrimSpace(r.FormValue("return")),
		GoogleEnabled: h.GoogleEnabled,
	})
}
