// internal/app/features/settings/admin.go
package settings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	settingsstore "github.com/dalemusser/groomhub/internal/app/store/settings"
	"github.com/dalemusser/groomhub/internal/app/system/authz"
	"github.com/dalemusser/groomhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type settingsVM struct {
	viewdata.BaseVM
	SiteName   string
	HasLogo    bool
	LogoName   string
	FooterHTML string
	Error      string
}

// ServeSettings displays the settings form.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := settingsstore.New(h.DB)
	settings, err := store.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load settings failed", err, "Failed to load settings.", "/")
		return
	}

	vm := settingsVM{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Site Settings", "/"),
		SiteName:   settings.SiteName,
		HasLogo:    settings.HasLogo(),
		LogoName:   settings.LogoName,
		FooterHTML: settings.FooterHTML,
	}
	templates.Render(w, r, "settings", vm)
}

// HandleSettings processes the settings form submission.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	// Logo uploads are small; cap the whole request well below the
	// photo-upload limit.
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		if err.Error() == "http: request body too large" {
			h.ErrLog.LogBadRequest(w, r, "request too large", err, "Request is too large. Maximum size is 8 MB.", "/settings")
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	siteName := strings.TrimSpace(r.FormValue("site_name"))
	footerHTML := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("footer_html")))
	removeLogo := r.FormValue("remove_logo") != ""

	if siteName == "" {
		h.renderWithError(w, r, "Site name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := settingsstore.New(h.DB)
	current, err := store.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load settings failed", err, "Failed to load settings.", "/settings")
		return
	}

	logoPath := current.LogoPath
	logoName := current.LogoName

	if removeLogo {
		if current.HasLogo() {
			if err := h.Storage.Delete(ctx, current.LogoPath); err != nil {
				h.Log.Warn("failed to delete old logo", zap.String("path", current.LogoPath), zap.Error(err))
			}
		}
		logoPath = ""
		logoName = ""
	}

	file, header, fileErr := r.FormFile("logo")
	if fileErr == nil && header != nil && header.Size > 0 {
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			h.renderWithError(w, r, "Logo must be an image file.")
			return
		}

		if current.HasLogo() {
			if err := h.Storage.Delete(ctx, current.LogoPath); err != nil {
				h.Log.Warn("failed to delete old logo", zap.String("path", current.LogoPath), zap.Error(err))
			}
		}

		path, err := uploadLogo(ctx, h.Storage, header.Filename, file, contentType)
		if err != nil {
			h.Log.Error("logo upload failed", zap.Error(err))
			h.renderWithError(w, r, "Failed to upload logo. Please try again.")
			return
		}
		logoPath = path
		logoName = header.Filename
	}

	settings := models.SiteSettings{
		SiteName:   siteName,
		LogoPath:   logoPath,
		LogoName:   logoName,
		FooterHTML: footerHTML,
	}
	if _, uname, userID, ok := authz.UserCtx(r); ok {
		settings.UpdatedByID = &userID
		settings.UpdatedByName = uname
	}

	if err := store.Save(ctx, settings); err != nil {
		h.Log.Error("failed to save settings", zap.Error(err))
		h.renderWithError(w, r, "Failed to save settings.")
		return
	}

	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, errMsg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := settingsstore.New(h.DB)
	settings, _ := store.Get(ctx)

	vm := settingsVM{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Site Settings", "/"),
		SiteName:   settings.SiteName,
		HasLogo:    settings.HasLogo(),
		LogoName:   settings.LogoName,
		FooterHTML: settings.FooterHTML,
		Error:      errMsg,
	}
	templates.Render(w, r, "settings", vm)
}

// uploadLogo stores a logo file under a unique path: logos/YYYY/MM/uuid.ext.
func uploadLogo(ctx context.Context, store storage.Store, filename string, reader io.Reader, contentType string) (string, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("logos/%04d/%02d", now.Year(), now.Month())
	ext := filepath.Ext(filename)
	path := filepath.ToSlash(filepath.Join(dateDir, uuid.New().String()[:8]+ext))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	return path, nil
}
