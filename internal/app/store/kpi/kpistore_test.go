package kpistore_test

import (
	"context"
	"math"
	"testing"
	"time"

	kpistore "github.com/dalemusser/groomhub/internal/app/store/kpi"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/groomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func seedCompleted(t *testing.T, ctx context.Context, db *mongo.Database, customerID primitive.ObjectID, name string, completed time.Time, amount float64, items []models.ServiceItem) {
	t.Helper()
	_, err := db.Collection("service_requests").InsertOne(ctx, models.ServiceRequest{
		ID:            primitive.NewObjectID(),
		CustomerID:    customerID,
		CustomerName:  name,
		Status:        models.StatusCompleted,
		ScheduledDate: completed,
		CompletedDate: &completed,
		TotalAmount:   amount,
		ServiceItems:  items,
		Territory:     "Central",
	})
	if err != nil {
		t.Fatalf("insert request: %v", err)
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestFetchRevenueSummary_Trend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	cust := primitive.NewObjectID()
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	seedCompleted(t, ctx, db, cust, "Meera", from.AddDate(0, 0, 5), 1500, nil)
	seedCompleted(t, ctx, db, cust, "Meera", from.AddDate(0, 0, 10), 500, nil)
	// Previous period
	seedCompleted(t, ctx, db, cust, "Meera", from.AddDate(0, 0, -10), 1000, nil)

	sum, err := store.FetchRevenueSummary(ctx, from, to)
	if err != nil {
		t.Fatalf("FetchRevenueSummary: %v", err)
	}
	if sum.Total != 2000 {
		t.Errorf("Total = %v, want 2000", sum.Total)
	}
	if sum.PreviousTotal != 1000 {
		t.Errorf("PreviousTotal = %v, want 1000", sum.PreviousTotal)
	}
	if sum.IsNew {
		t.Error("IsNew should be false with a previous period")
	}
	if !approx(sum.TrendPercent, 100) {
		t.Errorf("TrendPercent = %v, want 100", sum.TrendPercent)
	}
	if sum.Count != 2 {
		t.Errorf("Count = %v, want 2", sum.Count)
	}
}

func TestFetchRevenueSummary_NewMarkerGuardsZeroDivide(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	seedCompleted(t, ctx, db, primitive.NewObjectID(), "First", from.AddDate(0, 0, 3), 800, nil)

	sum, err := store.FetchRevenueSummary(ctx, from, to)
	if err != nil {
		t.Fatalf("FetchRevenueSummary: %v", err)
	}
	if !sum.IsNew {
		t.Error("IsNew should be true when the previous period is empty")
	}
	if sum.TrendPercent != 0 {
		t.Errorf("TrendPercent = %v, want 0", sum.TrendPercent)
	}
}

func TestFetchMonthlyRevenueAndGrowth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	seedCompleted(t, ctx, db, a, "A", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 1000, nil)
	seedCompleted(t, ctx, db, a, "A", time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), 400, nil)
	seedCompleted(t, ctx, db, b, "B", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), 600, nil)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	rev, err := store.FetchMonthlyRevenue(ctx, from, to)
	if err != nil {
		t.Fatalf("FetchMonthlyRevenue: %v", err)
	}
	if len(rev) != 2 {
		t.Fatalf("len(rev) = %d, want 2", len(rev))
	}
	if rev[0].Month != "2025-03" || rev[0].Value != 1000 {
		t.Errorf("rev[0] = %+v", rev[0])
	}
	if rev[1].Month != "2025-04" || rev[1].Value != 1000 {
		t.Errorf("rev[1] = %+v", rev[1])
	}

	growth, err := store.FetchCustomerGrowth(ctx, from, to)
	if err != nil {
		t.Fatalf("FetchCustomerGrowth: %v", err)
	}
	// A is new in March, B in April
	if len(growth) != 2 {
		t.Fatalf("len(growth) = %d, want 2", len(growth))
	}
	if growth[0].Month != "2025-03" || growth[0].Value != 1 {
		t.Errorf("growth[0] = %+v", growth[0])
	}
	if growth[1].Month != "2025-04" || growth[1].Value != 1 {
		t.Errorf("growth[1] = %+v", growth[1])
	}
}

func TestFetchARPU(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	seedCompleted(t, ctx, db, a, "A", month.AddDate(0, 0, 2), 1000, nil)
	seedCompleted(t, ctx, db, a, "A", month.AddDate(0, 0, 9), 500, nil)
	seedCompleted(t, ctx, db, b, "B", month.AddDate(0, 0, 15), 300, nil)

	arpu, err := store.FetchARPU(ctx, month, month.AddDate(0, 1, -1))
	if err != nil {
		t.Fatalf("FetchARPU: %v", err)
	}
	if arpu.Customers != 2 {
		t.Errorf("Customers = %d, want 2", arpu.Customers)
	}
	if !approx(arpu.Average, 900) {
		t.Errorf("Average = %v, want 900", arpu.Average)
	}
	if len(arpu.Monthly) != 1 || !approx(arpu.Monthly[0].Value, 900) {
		t.Errorf("Monthly = %+v", arpu.Monthly)
	}
}

func TestFetchTopCustomers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	day := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	seedCompleted(t, ctx, db, a, "Big Spender", day, 5000, nil)
	seedCompleted(t, ctx, db, b, "Regular", day, 300, nil)
	seedCompleted(t, ctx, db, b, "Regular", day.AddDate(0, 0, 1), 300, nil)

	top, err := store.FetchTopCustomers(ctx, day, day.AddDate(0, 0, 7), 5)
	if err != nil {
		t.Fatalf("FetchTopCustomers: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].CustomerName != "Big Spender" || top[0].Revenue != 5000 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].Services != 2 {
		t.Errorf("top[1].Services = %d, want 2", top[1].Services)
	}
}

func TestFetchBreedStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	day := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	owner := models.Customer{
		ID:   primitive.NewObjectID(),
		Name: "Meera",
		Pets: []models.Pet{
			{Name: "Bruno", Species: "dog", Breed: "Labrador"},
			{Name: "Kitty", Species: "cat", Breed: "Persian"},
		},
	}
	if _, err := db.Collection("customers").InsertOne(ctx, owner); err != nil {
		t.Fatalf("insert customer: %v", err)
	}

	seedCompleted(t, ctx, db, owner.ID, "Meera", day, 1300, []models.ServiceItem{
		{ServiceName: "Full Groom", PetName: "Bruno", Amount: 800},
		{ServiceName: "Bath", PetName: "Kitty", Amount: 300},
		{ServiceName: "Nail Trim", PetName: "Stray", Amount: 200},
	})

	stats, err := store.FetchBreedStats(ctx, day, day)
	if err != nil {
		t.Fatalf("FetchBreedStats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("len(stats) = %d, want 3", len(stats))
	}
	// Sorted by revenue desc
	if stats[0].Breed != "Labrador" || stats[0].Revenue != 800 {
		t.Errorf("stats[0] = %+v", stats[0])
	}
	byBreed := map[string]kpistore.BreedStat{}
	for _, st := range stats {
		byBreed[st.Breed] = st
	}
	if byBreed["Persian"].Revenue != 300 {
		t.Errorf("Persian = %+v", byBreed["Persian"])
	}
	if byBreed["Unknown"].Revenue != 200 {
		t.Errorf("Unknown = %+v", byBreed["Unknown"])
	}
}

func TestFetchTerritoryStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	day := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	seedCompleted(t, ctx, db, a, "A", day, 1000, nil)
	seedCompleted(t, ctx, db, b, "B", day, 700, nil)

	stats, err := store.FetchTerritoryStats(ctx, day, day)
	if err != nil {
		t.Fatalf("FetchTerritoryStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].Territory != "Central" || stats[0].Revenue != 1700 || stats[0].Customers != 2 {
		t.Errorf("stats[0] = %+v", stats[0])
	}
}

func TestFetchCohorts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	// A: first in March, active again in April
	seedCompleted(t, ctx, db, a, "A", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 500, nil)
	seedCompleted(t, ctx, db, a, "A", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), 500, nil)
	// B: first in March only
	seedCompleted(t, ctx, db, b, "B", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 300, nil)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	cohorts, err := store.FetchCohorts(ctx, from, to, 2)
	if err != nil {
		t.Fatalf("FetchCohorts: %v", err)
	}
	if len(cohorts) != 1 {
		t.Fatalf("len(cohorts) = %d, want 1", len(cohorts))
	}
	c := cohorts[0]
	if c.Month != "2025-03" || c.Size != 2 {
		t.Errorf("cohort = %+v", c)
	}
	if !approx(c.Retention[0], 100) {
		t.Errorf("Retention[0] = %v, want 100", c.Retention[0])
	}
	if !approx(c.Retention[1], 50) {
		t.Errorf("Retention[1] = %v, want 50", c.Retention[1])
	}
}

func TestFetchFunnel_GuardsZeroDenominators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := kpistore.New(db)

	// No data at all: percent fields stay zero instead of NaN
	funnel, err := store.FetchFunnel(ctx)
	if err != nil {
		t.Fatalf("FetchFunnel: %v", err)
	}
	if funnel.LeadToSchedule != 0 || funnel.ScheduleToDone != 0 {
		t.Errorf("empty funnel = %+v", funnel)
	}

	// Two customers, one with a completed request, one with none
	served := models.Customer{ID: primitive.NewObjectID(), Name: "Served"}
	lead := models.Customer{ID: primitive.NewObjectID(), Name: "Lead Only"}
	for _, c := range []models.Customer{served, lead} {
		if _, err := db.Collection("customers").InsertOne(ctx, c); err != nil {
			t.Fatalf("insert customer: %v", err)
		}
	}
	seedCompleted(t, ctx, db, served.ID, "Served", time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), 400, nil)

	funnel, err = store.FetchFunnel(ctx)
	if err != nil {
		t.Fatalf("FetchFunnel: %v", err)
	}
	if funnel.Leads != 2 || funnel.Scheduled != 1 || funnel.Completed != 1 {
		t.Errorf("funnel = %+v", funnel)
	}
	if !approx(funnel.LeadToSchedule, 50) {
		t.Errorf("LeadToSchedule = %v, want 50", funnel.LeadToSchedule)
	}
	if !approx(funnel.ScheduleToDone, 100) {
		t.Errorf("ScheduleToDone = %v, want 100", funnel.ScheduleToDone)
	}
}
