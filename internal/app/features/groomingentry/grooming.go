// internal/app/features/groomingentry/grooming.go
package groomingentry

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/groomhub/internal/app/features/errors"
	customerstore "github.com/dalemusser/groomhub/internal/app/store/customers"
	srstore "github.com/dalemusser/groomhub/internal/app/store/servicerequests"
	"github.com/dalemusser/groomhub/internal/app/system/authz"
	"github.com/dalemusser/groomhub/internal/app/system/format"
	"github.com/dalemusser/groomhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	dateLayout    = "2006-01-02"
	displayLayout = "Mon 02 Jan 2006"
	maxUploadSize = 32 << 20
)

// entryDate reads the selected day, defaulting to today.
func entryDate(r *http.Request) time.Time {
	raw := normalize.QueryParam(query.Get(r, "date"))
	if raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// ServeList renders the entry forms for all grooming visits on the
// selected day.
// GET /grooming
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	day := entryDate(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	lf := srstore.ListFilter{From: day, To: day}
	if !authz.CanViewAllRequests(r) {
		if _, _, userID, ok := authz.UserCtx(r); ok {
			lf.DriverID = &userID
		}
	}

	reqs, err := srstore.New(h.DB).List(ctx, lf)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grooming list", err, "A database error occurred.", "/")
		return
	}

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, h.DB, "Grooming Entry", "/"),
		DateRaw: day.Format(dateLayout),
	}
	for i := range reqs {
		vm, err := h.buildEntry(ctx, &reqs[i])
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error loading grooming entry", err, "A database error occurred.", "/")
			return
		}
		data.Entries = append(data.Entries, vm)
	}

	templates.Render(w, r, "grooming", data)
}

// ServeEntry re-renders one entry card.
// GET /grooming/{id}
func (h *Handler) ServeEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sr, ok := h.loadOwnedRequest(ctx, w, r)
	if !ok {
		return
	}

	vm, err := h.buildEntry(ctx, sr)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error loading grooming entry", err, "Failed to load the request.", "/grooming")
		return
	}
	templates.Render(w, r, "grooming_entry", vm)
}

// ServeSaveDraft stores an in-progress suggestion without marking it
// final.
// POST /grooming/{id}/draft
func (h *Handler) ServeSaveDraft(w http.ResponseWriter, r *http.Request) {
	h.saveSuggestion(w, r, true)
}

// ServeSaveSuggestion stores the final driver suggestion. Fields are
// sanitized before storage.
// POST /grooming/{id}/suggestion
func (h *Handler) ServeSaveSuggestion(w http.ResponseWriter, r *http.Request) {
	h.saveSuggestion(w, r, false)
}

func (h *Handler) saveSuggestion(w http.ResponseWriter, r *http.Request, draft bool) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/grooming")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sr, ok := h.loadOwnedRequest(ctx, w, r)
	if !ok {
		return
	}

	sug := models.DriverSuggestion{
		Notes: htmlsanitize.Sanitize(r.FormValue("notes")),
		Draft: draft,
	}

	pets := r.Form["pet"]
	conditions := r.Form["condition"]
	suggestions := r.Form["suggestion"]
	for i, pet := range pets {
		ps := models.PetSuggestion{}
		if i < len(conditions) {
			ps.Condition = htmlsanitize.Sanitize(conditions[i])
		}
		if i < len(suggestions) {
			ps.Suggestion = htmlsanitize.Sanitize(suggestions[i])
		}
		if ps.Condition == "" && ps.Suggestion == "" {
			continue
		}
		if sug.Pets == nil {
			sug.Pets = make(map[string]models.PetSuggestion)
		}
		sug.Pets[pet] = ps
	}

	if err := srstore.New(h.DB).SaveSuggestion(ctx, sr.ID, sug); err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error saving suggestion", err, "Failed to save the suggestion.", "/grooming")
		return
	}

	h.Log.Info("driver suggestion saved",
		zap.String("request_id", sr.ID.Hex()),
		zap.Bool("draft", draft))

	h.renderEntryFresh(ctx, w, r, sr.ID)
}

// ServeUploadPhotos attaches uploaded pet photos to a request. Files
// that fail to store are reported in the fragment; the rest are still
// attached.
// POST /grooming/{id}/photos
func (h *Handler) ServeUploadPhotos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse multipart form failed", err, "Invalid upload.", "/grooming")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	sr, ok := h.loadOwnedRequest(ctx, w, r)
	if !ok {
		return
	}

	petName := normalize.QueryParam(r.FormValue("pet_name"))
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		h.ErrLog.HTMXLogBadRequest(w, r, "photo upload with no files", nil, "Pick at least one photo to upload.", "/grooming")
		return
	}

	var attached []models.PetPhoto
	var failures []string
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			failures = append(failures, header.Filename)
			h.Log.Warn("photo open failed", zap.String("file", header.Filename), zap.Error(err))
			continue
		}
		info, err := uploadPhoto(ctx, h.Storage, header.Filename, file, header.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			failures = append(failures, header.Filename)
			h.Log.Warn("photo store failed", zap.String("file", header.Filename), zap.Error(err))
			continue
		}
		attached = append(attached, models.PetPhoto{
			ID:          primitive.NewObjectID().Hex(),
			PetName:     petName,
			PhotoURL:    h.Storage.URL(info.Path),
			StoragePath: info.Path,
			UploadedAt:  time.Now().UTC(),
		})
	}

	if len(attached) > 0 {
		if err := srstore.New(h.DB).AddPhotos(ctx, sr.ID, attached); err != nil {
			h.ErrLog.HTMXLogServerError(w, r, "database error attaching photos", err, "Failed to attach photos.", "/grooming")
			return
		}
	}

	h.renderPhotosFresh(ctx, w, r, sr.ID, failures)
}

// ServeDeletePhoto removes one photo row and its stored object.
// POST /grooming/{id}/photos/{photoID}/delete
func (h *Handler) ServeDeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sr, ok := h.loadOwnedRequest(ctx, w, r)
	if !ok {
		return
	}

	photoID := chi.URLParam(r, "photoID")

	// Best-effort storage cleanup before the row goes away
	for _, p := range sr.PetPhotos {
		if p.ID == photoID && p.StoragePath != "" {
			if err := h.Storage.Delete(ctx, p.StoragePath); err != nil {
				h.Log.Warn("photo object delete failed", zap.String("path", p.StoragePath), zap.Error(err))
			}
		}
	}

	if err := srstore.New(h.DB).DeletePhoto(ctx, sr.ID, photoID); err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error deleting photo", err, "Failed to delete the photo.", "/grooming")
		return
	}

	h.renderPhotosFresh(ctx, w, r, sr.ID, nil)
}

// loadOwnedRequest fetches the request in the URL and enforces driver
// scoping: drivers may only touch their own assignments.
func (h *Handler) loadOwnedRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.ServiceRequest, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.HTMXNotFound(w, r, "That service request does not exist.", "/grooming")
		return nil, false
	}

	sr, err := srstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == srstore.ErrNotFound {
			uierrors.HTMXNotFound(w, r, "That service request does not exist.", "/grooming")
			return nil, false
		}
		h.ErrLog.HTMXLogServerError(w, r, "database error loading request", err, "Failed to load the request.", "/grooming")
		return nil, false
	}

	if !authz.CanViewAllRequests(r) {
		_, _, userID, ok := authz.UserCtx(r)
		if !ok || sr.DriverID == nil || *sr.DriverID != userID {
			uierrors.HTMXForbidden(w, r, "This visit is assigned to another driver.", "/grooming")
			return nil, false
		}
	}

	return sr, true
}

// buildEntry assembles the full entry card for one request, pulling
// parking notes and pet breeds from the customer record.
func (h *Handler) buildEntry(ctx context.Context, sr *models.ServiceRequest) (entryVM, error) {
	vm := entryVM{
		ID:            sr.ID.Hex(),
		CustomerName:  sr.CustomerName,
		Status:        sr.Status,
		ScheduledDate: sr.ScheduledDate.Format(displayLayout),
		Photos:        buildPhotosVM(sr, nil),
	}

	// The card still renders without the customer record, just with no
	// pet list or parking note.
	cust, err := customerstore.New(h.DB).GetByID(ctx, sr.CustomerID)
	if err != nil {
		h.Log.Warn("customer lookup failed for entry card",
			zap.String("request_id", sr.ID.Hex()),
			zap.String("customer_id", sr.CustomerID.Hex()),
			zap.Error(err))
	}
	if cust != nil {
		vm.CurrentParking = cust.CurrentParking
		for _, pet := range cust.Pets {
			vm.Pets = append(vm.Pets, petVM{Name: pet.Name, Breed: pet.Breed})
		}
	}

	if sug := sr.DriverSuggestion; sug != nil {
		vm.Notes = sug.Notes
		vm.Draft = sug.Draft
		vm.Saved = !sug.Draft
		for i := range vm.Pets {
			if ps, ok := sug.Pets[vm.Pets[i].Name]; ok {
				vm.Pets[i].Condition = ps.Condition
				vm.Pets[i].Suggestion = ps.Suggestion
			}
		}
	}

	for _, item := range sr.ServiceItems {
		vm.ServiceItems = append(vm.ServiceItems, serviceItemVM{
			ServiceName: item.ServiceName,
			PetName:     item.PetName,
			Amount:      format.INR(item.Amount),
		})
	}

	return vm, nil
}

func buildPhotosVM(sr *models.ServiceRequest, failures []string) photosVM {
	vm := photosVM{RequestID: sr.ID.Hex(), Failures: failures}
	for _, p := range sr.PetPhotos {
		vm.Photos = append(vm.Photos, photoVM{
			ID:         p.ID,
			PetName:    p.PetName,
			URL:        p.PhotoURL,
			UploadedAt: p.UploadedAt.Format(displayLayout),
		})
	}
	return vm
}

// renderEntryFresh re-fetches the request and renders the whole entry
// card.
func (h *Handler) renderEntryFresh(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	sr, err := srstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error reloading request", err, "Failed to reload the request.", "/grooming")
		return
	}
	vm, err := h.buildEntry(ctx, sr)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error reloading entry", err, "Failed to reload the request.", "/grooming")
		return
	}
	templates.Render(w, r, "grooming_entry", vm)
}

// renderPhotosFresh re-fetches the request and renders only the photo
// fragment, surfacing any per-file failures.
func (h *Handler) renderPhotosFresh(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID, failures []string) {
	sr, err := srstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error reloading photos", err, "Failed to reload photos.", "/grooming")
		return
	}
	templates.Render(w, r, "grooming_photos", buildPhotosVM(sr, failures))
}
