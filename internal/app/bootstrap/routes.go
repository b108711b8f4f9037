// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/groomhub/internal/app/features/authgoogle"
	callcenterfeature "github.com/dalemusser/groomhub/internal/app/features/callcenter"
	dispatchfeature "github.com/dalemusser/groomhub/internal/app/features/dispatch"
	errorsfeature "github.com/dalemusser/groomhub/internal/app/features/errors"
	groomingfeature "github.com/dalemusser/groomhub/internal/app/features/groomingentry"
	healthfeature "github.com/dalemusser/groomhub/internal/app/features/health"
	homefeature "github.com/dalemusser/groomhub/internal/app/features/home"
	kpifeature "github.com/dalemusser/groomhub/internal/app/features/kpi"
	locationmapfeature "github.com/dalemusser/groomhub/internal/app/features/locationmap"
	loginfeature "github.com/dalemusser/groomhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/groomhub/internal/app/features/logout"
	settingsfeature "github.com/dalemusser/groomhub/internal/app/features/settings"
	userstore "github.com/dalemusser/groomhub/internal/app/store/users"
	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// GroomHub initializes the template engine, the photo storage backend,
// session and CSRF middleware, then mounts feature routers for each
// panel: call center, KPIs, dispatch, grooming entry, and the customer
// location map.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data
	// on each request. This ensures role changes and disabled accounts
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.GroomHubMongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Local storage backend for pet photo uploads.
	createDirs := true
	photoStore, err := storage.NewLocal(storage.LocalConfig{
		BasePath:   appCfg.StorageLocalPath,
		BaseURL:    appCfg.StorageLocalURL,
		CreateDirs: &createDirs,
	})
	if err != nil {
		logger.Error("photo storage init failed", zap.Error(err))
		return nil, err
	}
	viewdata.Init(photoStore)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// CSRF protection on every non-GET request. The layout publishes the
	// token to HTMX via hx-headers; plain forms carry a hidden field.
	r.Use(csrf.Protect(
		[]byte(appCfg.SessionKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.GroomHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded pet photos (local backend serves from disk)
	r.Handle(appCfg.StorageLocalURL+"/*", http.StripPrefix(appCfg.StorageLocalURL+"/",
		http.FileServer(http.Dir(appCfg.StorageLocalPath))))

	// Landing page
	homeHandler := homefeature.NewHandler(deps.GroomHubMongoDatabase, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	loginHandler := loginfeature.NewHandler(deps.GroomHubMongoDatabase, sessionMgr, errLog, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	googleHandler := authgooglefeature.NewHandler(
		deps.GroomHubMongoDatabase,
		sessionMgr,
		errLog,
		appCfg.GoogleClientID,
		appCfg.GoogleClientSecret,
		appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Call center dashboard (agents, managers, admins)
	callcenterHandler := callcenterfeature.NewHandler(deps.GroomHubMongoDatabase, errLog, logger)
	r.Mount("/callcenter", callcenterfeature.Routes(callcenterHandler, sessionMgr))

	// Business KPIs (managers and up)
	kpiHandler := kpifeature.NewHandler(deps.GroomHubMongoDatabase, errLog, logger)
	r.Mount("/kpi", kpifeature.Routes(kpiHandler, sessionMgr))

	// Dispatch board (drivers see own runs; managers see all)
	dispatchHandler := dispatchfeature.NewHandler(deps.GroomHubMongoDatabase, errLog, logger)
	r.Mount("/dispatch", dispatchfeature.Routes(dispatchHandler, sessionMgr))

	// Grooming data entry with photo uploads
	groomingHandler := groomingfeature.NewHandler(deps.GroomHubMongoDatabase, photoStore, errLog, logger)
	r.Mount("/grooming", groomingfeature.Routes(groomingHandler, sessionMgr))

	// Customer location map
	mapHandler := locationmapfeature.NewHandler(deps.GroomHubMongoDatabase, errLog, logger)
	r.Mount("/map", locationmapfeature.Routes(mapHandler, sessionMgr))

	// Site settings (admins only): name, logo, footer HTML
	settingsHandler := settingsfeature.NewHandler(deps.GroomHubMongoDatabase, photoStore, errLog, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	return r, nil
}
