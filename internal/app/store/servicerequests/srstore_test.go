package srstore_test

import (
	"context"
	"testing"
	"time"

	srstore "github.com/dalemusser/groomhub/internal/app/store/servicerequests"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newRequest(customer string, status string, scheduled time.Time, amount float64) models.ServiceRequest {
	return models.ServiceRequest{
		CustomerID:    primitive.NewObjectID(),
		CustomerName:  customer,
		Status:        status,
		ScheduledDate: scheduled,
		TotalAmount:   amount,
	}
}

func mustCreate(t *testing.T, ctx context.Context, store *srstore.Store, sr models.ServiceRequest) models.ServiceRequest {
	t.Helper()
	created, err := store.Create(ctx, sr)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := srstore.New(db)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	created := mustCreate(t, ctx, store, newRequest("Meera", "", day, 1500))
	if created.Status != models.StatusPendingAssignment {
		t.Errorf("Status = %q, want %q", created.Status, models.StatusPendingAssignment)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}

	if _, err := store.Create(ctx, newRequest("Bad", "On Hold", day, 0)); err != srstore.ErrInvalidStatus {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestList_FiltersByStatusDateAndDriver(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := srstore.New(db)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	driverID := primitive.NewObjectID()

	withDriver := newRequest("Meera", models.StatusScheduled, day.Add(10*time.Hour), 1200)
	withDriver.DriverID = &driverID
	mustCreate(t, ctx, store, withDriver)
	mustCreate(t, ctx, store, newRequest("Rohit", models.StatusScheduled, day.Add(14*time.Hour), 900))
	mustCreate(t, ctx, store, newRequest("Late", models.StatusScheduled, day.AddDate(0, 0, 3), 500))
	mustCreate(t, ctx, store, newRequest("Done", models.StatusCompleted, day.Add(9*time.Hour), 700))

	list, err := store.List(ctx, srstore.ListFilter{Status: models.StatusScheduled, From: day, To: day})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	// Soonest first
	if list[0].CustomerName != "Meera" || list[1].CustomerName != "Rohit" {
		t.Errorf("order = %q, %q", list[0].CustomerName, list[1].CustomerName)
	}

	scoped, err := store.List(ctx, srstore.ListFilter{DriverID: &driverID})
	if err != nil {
		t.Fatalf("List driver scope: %v", err)
	}
	if len(scoped) != 1 || scoped[0].CustomerName != "Meera" {
		t.Errorf("driver scope returned %+v", scoped)
	}
}

func TestUpdateStatus_StampsCompletedDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := srstore.New(db)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	created := mustCreate(t, ctx, store, newRequest("Meera", models.StatusScheduled, day, 1200))

	if err := store.UpdateStatus(ctx, created.ID, models.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	sr, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sr.Status != models.StatusCompleted {
		t.Errorf("Status = %q", sr.Status)
	}
	if sr.CompletedDate == nil {
		t.Fatal("CompletedDate not stamped")
	}

	// Moving back off Completed clears the stamp
	if err := store.UpdateStatus(ctx, created.ID, models.StatusScheduled); err != nil {
		t.Fatalf("UpdateStatus back: %v", err)
	}
	sr, err = store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sr.CompletedDate != nil {
		t.Error("CompletedDate should be cleared")
	}

	if err := store.UpdateStatus(ctx, created.ID, "Napping"); err != srstore.ErrInvalidStatus {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if err := store.UpdateStatus(ctx, primitive.NewObjectID(), models.StatusCancelled); err != srstore.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSuggestion_DraftThenFinal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := srstore.New(db)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	created := mustCreate(t, ctx, store, newRequest("Meera", models.StatusScheduled, day, 1200))

	draft := models.DriverSuggestion{
		Notes: "Very matted coat",
		Pets: map[string]models.PetSuggestion{
			"Bruno": {Condition: "Matted", Suggestion: "Full shave"},
		},
		Draft: true,
	}
	if err := store.SaveSuggestion(ctx, created.ID, draft); err != nil {
		t.Fatalf("SaveSuggestion draft: %v", err)
	}

	sr, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sr.DriverSuggestion == nil || !sr.DriverSuggestion.Draft {
		t.Fatal("draft suggestion not stored")
	}
	if sr.DriverSuggestion.Pets["Bruno"].Suggestion != "Full shave" {
		t.Errorf("pet suggestion = %+v", sr.DriverSuggestion.Pets)
	}

	final := draft
	final.Draft = false
	if err := store.SaveSuggestion(ctx, created.ID, final); err != nil {
		t.Fatalf("SaveSuggestion final: %v", err)
	}
	sr, _ = store.GetByID(ctx, created.ID)
	if sr.DriverSuggestion.Draft {
		t.Error("final save should clear the draft mark")
	}
	if sr.DriverSuggestion.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestAddAndDeletePhotos(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := srstore.New(db)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	created := mustCreate(t, ctx, store, newRequest("Meera", models.StatusScheduled, day, 1200))

	photos := []models.PetPhoto{
		{ID: "p1", PetName: "Bruno", PhotoURL: "/uploads/p1.jpg", UploadedAt: day},
		{ID: "p2", PetName: "Bruno", PhotoURL: "/uploads/p2.jpg", UploadedAt: day},
	}
	if err := store.AddPhotos(ctx, created.ID, photos); err != nil {
		t.Fatalf("AddPhotos: %v", err)
	}

	sr, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(sr.PetPhotos) != 2 {
		t.Fatalf("len(PetPhotos) = %d, want 2", len(sr.PetPhotos))
	}

	if err := store.DeletePhoto(ctx, created.ID, "p1"); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	sr, _ = store.GetByID(ctx, created.ID)
	if len(sr.PetPhotos) != 1 || sr.PetPhotos[0].ID != "p2" {
		t.Errorf("PetPhotos after delete = %+v", sr.PetPhotos)
	}

	// Adding nothing is a no-op, not an error
	if err := store.AddPhotos(ctx, created.ID, nil); err != nil {
		t.Errorf("AddPhotos empty: %v", err)
	}
}

func TestFetchFinancials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := srstore.New(db)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	mustCreate(t, ctx, store, newRequest("A", models.StatusScheduled, day.Add(9*time.Hour), 1000))
	mustCreate(t, ctx, store, newRequest("B", models.StatusScheduled, day.Add(11*time.Hour), 500))

	// Completed inside the 3-day window
	recent := newRequest("C", models.StatusScheduled, day.AddDate(0, 0, -1), 900)
	created := mustCreate(t, ctx, store, recent)
	if err := completeAt(ctx, db, created.ID, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("completeAt: %v", err)
	}

	// Completed inside the 7-day window only
	older := mustCreate(t, ctx, store, newRequest("D", models.StatusScheduled, day.AddDate(0, 0, -6), 2100))
	if err := completeAt(ctx, db, older.ID, now.AddDate(0, 0, -5)); err != nil {
		t.Fatalf("completeAt: %v", err)
	}

	fin, err := store.FetchFinancials(ctx, srstore.ListFilter{From: day, To: day}, now)
	if err != nil {
		t.Fatalf("FetchFinancials: %v", err)
	}
	if fin.ScheduledTotal != 1500 {
		t.Errorf("ScheduledTotal = %v, want 1500", fin.ScheduledTotal)
	}
	if fin.CompletedTotal != 0 {
		t.Errorf("CompletedTotal = %v, want 0 (none completed today)", fin.CompletedTotal)
	}
	if fin.ThreeDayAverage != 300 {
		t.Errorf("ThreeDayAverage = %v, want 300", fin.ThreeDayAverage)
	}
	if fin.SevenDayAverage != (900+2100)/7.0 {
		t.Errorf("SevenDayAverage = %v, want %v", fin.SevenDayAverage, (900+2100)/7.0)
	}
}

// completeAt marks a request completed with a specific completion time.
func completeAt(ctx context.Context, db *mongo.Database, id primitive.ObjectID, at time.Time) error {
	_, err := db.Collection("service_requests").UpdateOne(ctx,
		map[string]any{"_id": id},
		map[string]any{"$set": map[string]any{
			"status":         models.StatusCompleted,
			"completed_date": at,
		}},
	)
	return err
}
