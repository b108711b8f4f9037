package customerstore_test

import (
	"context"
	"testing"

	customerstore "github.com/dalemusser/groomhub/internal/app/store/customers"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/groomhub/internal/testutil"
)

func ptr(v float64) *float64 { return &v }

func seed(t *testing.T, ctx context.Context, store *customerstore.Store, c models.Customer) models.Customer {
	t.Helper()
	created, err := store.Create(ctx, c)
	if err != nil {
		t.Fatalf("Create %s: %v", c.Name, err)
	}
	return created
}

func TestCreate_FoldsSearchKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := customerstore.New(db)

	created := seed(t, ctx, store, models.Customer{Name: "  Ángela Pets  "})
	if created.Name != "Ángela Pets" {
		t.Errorf("Name = %q, want trimmed", created.Name)
	}
	if created.NameCI != "angela pets" {
		t.Errorf("NameCI = %q, want folded", created.NameCI)
	}
}

func TestLocations_CoordinateFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := customerstore.New(db)

	// Stored coordinates win even when a maps link is also present
	seed(t, ctx, store, models.Customer{
		Name:          "Stored",
		LeadStatus:    "Converted",
		Latitude:      ptr(12.97),
		Longitude:     ptr(77.59),
		GoogleMapsURL: "https://www.google.com/maps?q=1.0,1.0",
	})
	// Coordinates parsed from the maps link
	seed(t, ctx, store, models.Customer{
		Name:          "Linked",
		LeadStatus:    "Lead",
		GoogleMapsURL: "https://www.google.com/maps/@13.08,80.27,15z",
	})
	// No resolvable coordinates, omitted
	seed(t, ctx, store, models.Customer{
		Name:          "Lost",
		GoogleMapsURL: "https://maps.app.goo.gl/shortlink",
	})
	seed(t, ctx, store, models.Customer{Name: "Bare"})

	locs, err := store.Locations(ctx, "", customerstore.Bounds{})
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("len(locs) = %d, want 2", len(locs))
	}

	byName := map[string]customerstore.Location{}
	for _, l := range locs {
		byName[l.Name] = l
	}
	if l := byName["Stored"]; l.Latitude != 12.97 || l.Longitude != 77.59 {
		t.Errorf("Stored pin = %+v", l)
	}
	if l := byName["Linked"]; l.Latitude != 13.08 || l.Longitude != 80.27 {
		t.Errorf("Linked pin = %+v", l)
	}
}

func TestLocations_LeadStatusAndBounds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := customerstore.New(db)

	seed(t, ctx, store, models.Customer{
		Name: "North", LeadStatus: "Lead",
		Latitude: ptr(13.2), Longitude: ptr(77.6),
	})
	seed(t, ctx, store, models.Customer{
		Name: "South", LeadStatus: "Converted",
		Latitude: ptr(12.8), Longitude: ptr(77.6),
	})

	locs, err := store.Locations(ctx, "Lead", customerstore.Bounds{})
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	if len(locs) != 1 || locs[0].Name != "North" {
		t.Errorf("lead filter returned %+v", locs)
	}

	locs, err = store.Locations(ctx, "", customerstore.Bounds{
		MinLat: 12.5, MaxLat: 13.0, MinLng: 77.0, MaxLng: 78.0,
	})
	if err != nil {
		t.Fatalf("Locations bounds: %v", err)
	}
	if len(locs) != 1 || locs[0].Name != "South" {
		t.Errorf("bounds filter returned %+v", locs)
	}
}

func TestLeadStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := customerstore.New(db)

	seed(t, ctx, store, models.Customer{Name: "A", LeadStatus: "Lead"})
	seed(t, ctx, store, models.Customer{Name: "B", LeadStatus: "Converted"})
	seed(t, ctx, store, models.Customer{Name: "C", LeadStatus: "Lead"})
	seed(t, ctx, store, models.Customer{Name: "D"})

	statuses, err := store.LeadStatuses(ctx)
	if err != nil {
		t.Fatalf("LeadStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Errorf("statuses = %v, want 2 distinct", statuses)
	}
}
