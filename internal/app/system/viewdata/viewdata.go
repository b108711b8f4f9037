// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"html/template"
	"net/http"

	settingsstore "github.com/dalemusser/groomhub/internal/app/store/settings"
	"github.com/dalemusser/groomhub/internal/app/system/authz"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, db, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	// Site settings (from database)
	SiteName   string
	LogoURL    string
	FooterHTML template.HTML

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

// storageProvider is set by Init and used to generate logo URLs.
var storageProvider storage.Store

// Init sets the storage provider for generating logo URLs.
// Call this once at startup from bootstrap.
func Init(store storage.Store) {
	storageProvider = store
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - db: database for loading site settings (can be nil for defaults)
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, db *mongo.Database, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    models.DefaultSiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		store := settingsstore.New(db)
		settings, err := store.Get(ctx)
		if err == nil {
			vm.SiteName = settings.SiteName
			vm.FooterHTML = template.HTML(settings.FooterHTML)
			if settings.HasLogo() && storageProvider != nil {
				vm.LogoURL = storageProvider.URL(settings.LogoPath)
			}
		}
	}

	return vm
}

// LoadBase populates a BaseVM without page title or back navigation.
// Pass db=nil if you don't need site settings (defaults are used).
func LoadBase(r *http.Request, db *mongo.Database) BaseVM {
	return NewBaseVM(r, db, "", "")
}

// GetSiteName returns the site name from settings, or the default if not available.
func GetSiteName(ctx context.Context, db *mongo.Database) string {
	if db == nil {
		return models.DefaultSiteName
	}
	store := settingsstore.New(db)
	settings, err := store.Get(ctx)
	if err != nil {
		return models.DefaultSiteName
	}
	return settings.SiteName
}
