// internal/app/store/kpi/kpistore.go
package kpistore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/groomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Revenue KPIs are computed from completed service requests only;
// completed_date places a request in a period.
type Store struct {
	requests  *mongo.Collection
	customers *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		requests:  db.Collection("service_requests"),
		customers: db.Collection("customers"),
	}
}

func completedMatch(from, to time.Time) bson.M {
	m := bson.M{"status": models.StatusCompleted}
	rng := bson.M{}
	if !from.IsZero() {
		rng["$gte"] = from
	}
	if !to.IsZero() {
		rng["$lt"] = to.AddDate(0, 0, 1)
	}
	if len(rng) > 0 {
		m["completed_date"] = rng
	}
	return m
}

// monthKey truncates a time to its "2006-01" bucket.
func monthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// groupByMonth is the shared $group stage keyed on the completion month.
var monthID = bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$completed_date"}}

// RevenueSummary compares the selected range against the period of the
// same length immediately before it.
type RevenueSummary struct {
	Total         float64
	PreviousTotal float64
	TrendPercent  float64
	// IsNew marks a zero previous period, where a trend percentage
	// would divide by zero.
	IsNew bool
	Count int
}

// FetchRevenueSummary sums completed revenue in [from, to] and in the
// preceding period of equal length.
func (s *Store) FetchRevenueSummary(ctx context.Context, from, to time.Time) (RevenueSummary, error) {
	var out RevenueSummary

	total, count, err := s.sumRange(ctx, completedMatch(from, to))
	if err != nil {
		return out, err
	}
	out.Total = total
	out.Count = count

	days := int(to.Sub(from).Hours()/24) + 1
	prevFrom := from.AddDate(0, 0, -days)
	prevTo := from.AddDate(0, 0, -1)
	prev, _, err := s.sumRange(ctx, completedMatch(prevFrom, prevTo))
	if err != nil {
		return out, err
	}
	out.PreviousTotal = prev

	if prev == 0 {
		out.IsNew = out.Total > 0
	} else {
		out.TrendPercent = (out.Total - prev) / prev * 100
	}
	return out, nil
}

func (s *Store) sumRange(ctx context.Context, match bson.M) (float64, int, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_amount"},
			"count": bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		Total float64 `bson:"total"`
		Count int     `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Count, nil
}

// MonthPoint is one month's value in a time series.
type MonthPoint struct {
	Month string  `bson:"_id"`
	Value float64 `bson:"value"`
}

// FetchMonthlyRevenue returns completed revenue per month, oldest first.
func (s *Store) FetchMonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthPoint, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": completedMatch(from, to)},
		{"$group": bson.M{"_id": monthID, "value": bson.M{"$sum": "$total_amount"}}},
		{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var points []MonthPoint
	if err := cur.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// FetchCustomerGrowth returns new customers per month, where a
// customer is new in the month of their first completed service.
func (s *Store) FetchCustomerGrowth(ctx context.Context, from, to time.Time) ([]MonthPoint, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"status": models.StatusCompleted}},
		{"$group": bson.M{
			"_id":   "$customer_id",
			"first": bson.M{"$min": "$completed_date"},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		First time.Time `bson:"first"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := map[string]float64{}
	for _, r := range rows {
		if !from.IsZero() && r.First.Before(from) {
			continue
		}
		if !to.IsZero() && !r.First.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		counts[monthKey(r.First)]++
	}

	points := make([]MonthPoint, 0, len(counts))
	for m, v := range counts {
		points = append(points, MonthPoint{Month: m, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points, nil
}

// ARPU is average revenue per customer over a range.
type ARPU struct {
	Average   float64
	Customers int
	Monthly   []MonthPoint
}

// FetchARPU returns revenue per distinct served customer, overall and
// per month.
func (s *Store) FetchARPU(ctx context.Context, from, to time.Time) (ARPU, error) {
	var out ARPU

	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": completedMatch(from, to)},
		{"$group": bson.M{
			"_id":       monthID,
			"total":     bson.M{"$sum": "$total_amount"},
			"customers": bson.M{"$addToSet": "$customer_id"},
		}},
		{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		return out, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Month     string               `bson:"_id"`
		Total     float64              `bson:"total"`
		Customers []primitive.ObjectID `bson:"customers"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return out, err
	}

	all := map[primitive.ObjectID]struct{}{}
	var total float64
	for _, r := range rows {
		total += r.Total
		for _, id := range r.Customers {
			all[id] = struct{}{}
		}
		monthly := MonthPoint{Month: r.Month}
		if n := len(r.Customers); n > 0 {
			monthly.Value = r.Total / float64(n)
		}
		out.Monthly = append(out.Monthly, monthly)
	}
	out.Customers = len(all)
	if out.Customers > 0 {
		out.Average = total / float64(out.Customers)
	}
	return out, nil
}

// TopCustomer is one row in the top-customers tables.
type TopCustomer struct {
	CustomerID   primitive.ObjectID `bson:"_id"`
	CustomerName string             `bson:"customer_name"`
	Revenue      float64            `bson:"revenue"`
	Services     int                `bson:"services"`
}

// FetchTopCustomers returns the top n customers by completed revenue.
// Callers re-sort by Services for the by-count table.
func (s *Store) FetchTopCustomers(ctx context.Context, from, to time.Time, n int) ([]TopCustomer, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": completedMatch(from, to)},
		{"$group": bson.M{
			"_id":           "$customer_id",
			"customer_name": bson.M{"$last": "$customer_name"},
			"revenue":       bson.M{"$sum": "$total_amount"},
			"services":      bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"revenue": -1}},
		{"$limit": n},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []TopCustomer
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// BreedStat aggregates services billed against one breed.
type BreedStat struct {
	Breed    string
	Services int
	Revenue  float64
}

// FetchBreedStats joins billed service items against the owning
// customer's pets to attribute revenue per breed. Items whose pet name
// matches no pet on the customer fall into an "Unknown" bucket.
func (s *Store) FetchBreedStats(ctx context.Context, from, to time.Time) ([]BreedStat, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": completedMatch(from, to)},
		{"$unwind": "$service_items"},
		{"$group": bson.M{
			"_id": bson.M{
				"customer_id": "$customer_id",
				"pet_name":    "$service_items.pet_name",
			},
			"revenue":  bson.M{"$sum": "$service_items.amount"},
			"services": bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	type row struct {
		ID struct {
			CustomerID primitive.ObjectID `bson:"customer_id"`
			PetName    string             `bson:"pet_name"`
		} `bson:"_id"`
		Revenue  float64 `bson:"revenue"`
		Services int     `bson:"services"`
	}
	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Load pet breeds for the customers involved
	ids := make([]primitive.ObjectID, 0, len(rows))
	seen := map[primitive.ObjectID]struct{}{}
	for _, r := range rows {
		if _, ok := seen[r.ID.CustomerID]; ok {
			continue
		}
		seen[r.ID.CustomerID] = struct{}{}
		ids = append(ids, r.ID.CustomerID)
	}

	proj := options.Find().SetProjection(bson.M{"pets": 1})
	cc, err := s.customers.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cc.Close(ctx)

	var custs []models.Customer
	if err := cc.All(ctx, &custs); err != nil {
		return nil, err
	}
	breedOf := map[primitive.ObjectID]map[string]string{}
	for _, c := range custs {
		m := map[string]string{}
		for _, p := range c.Pets {
			if p.Breed != "" {
				m[p.Name] = p.Breed
			}
		}
		breedOf[c.ID] = m
	}

	byBreed := map[string]*BreedStat{}
	for _, r := range rows {
		breed := breedOf[r.ID.CustomerID][r.ID.PetName]
		if breed == "" {
			breed = "Unknown"
		}
		st := byBreed[breed]
		if st == nil {
			st = &BreedStat{Breed: breed}
			byBreed[breed] = st
		}
		st.Revenue += r.Revenue
		st.Services += r.Services
	}

	out := make([]BreedStat, 0, len(byBreed))
	for _, st := range byBreed {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out, nil
}

// TerritoryStat aggregates completed business per territory.
type TerritoryStat struct {
	Territory string
	Revenue   float64
	Customers int
	Services  int
}

// FetchTerritoryStats groups completed revenue and distinct customers
// by territory. Requests without a territory bucket under "Unassigned".
func (s *Store) FetchTerritoryStats(ctx context.Context, from, to time.Time) ([]TerritoryStat, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": completedMatch(from, to)},
		{"$group": bson.M{
			"_id":       bson.M{"$ifNull": bson.A{"$territory", ""}},
			"revenue":   bson.M{"$sum": "$total_amount"},
			"services":  bson.M{"$sum": 1},
			"customers": bson.M{"$addToSet": "$customer_id"},
		}},
		{"$sort": bson.M{"revenue": -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Territory string               `bson:"_id"`
		Revenue   float64              `bson:"revenue"`
		Services  int                  `bson:"services"`
		Customers []primitive.ObjectID `bson:"customers"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]TerritoryStat, 0, len(rows))
	for _, r := range rows {
		name := r.Territory
		if name == "" {
			name = "Unassigned"
		}
		out = append(out, TerritoryStat{
			Territory: name,
			Revenue:   r.Revenue,
			Customers: len(r.Customers),
			Services:  r.Services,
		})
	}
	return out, nil
}

// CohortRow is one first-service-month cohort with retention per
// subsequent month offset (index 0 is the cohort month itself).
type CohortRow struct {
	Month     string
	Size      int
	Retention []float64
}

// FetchCohorts builds monthly retention: for each cohort of customers
// by first completed month, the share still active in each later month.
func (s *Store) FetchCohorts(ctx context.Context, from, to time.Time, maxOffsets int) ([]CohortRow, error) {
	cur, err := s.requests.Aggregate(ctx, []bson.M{
		{"$match": completedMatch(from, to)},
		{"$group": bson.M{
			"_id": bson.M{
				"customer_id": "$customer_id",
				"month":       monthID,
			},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			CustomerID primitive.ObjectID `bson:"customer_id"`
			Month      string             `bson:"month"`
		} `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	active := map[primitive.ObjectID][]string{}
	for _, r := range rows {
		active[r.ID.CustomerID] = append(active[r.ID.CustomerID], r.ID.Month)
	}

	cohortOf := map[primitive.ObjectID]string{}
	cohortMembers := map[string][]primitive.ObjectID{}
	for id, months := range active {
		sort.Strings(months)
		first := months[0]
		cohortOf[id] = first
		cohortMembers[first] = append(cohortMembers[first], id)
	}

	cohorts := make([]string, 0, len(cohortMembers))
	for m := range cohortMembers {
		cohorts = append(cohorts, m)
	}
	sort.Strings(cohorts)

	out := make([]CohortRow, 0, len(cohorts))
	for _, cohort := range cohorts {
		members := cohortMembers[cohort]
		row := CohortRow{Month: cohort, Size: len(members)}
		for off := 0; off < maxOffsets; off++ {
			target := addMonths(cohort, off)
			activeCount := 0
			for _, id := range members {
				for _, m := range active[id] {
					if m == target {
						activeCount++
						break
					}
				}
			}
			row.Retention = append(row.Retention, float64(activeCount)/float64(len(members))*100)
		}
		out = append(out, row)
	}
	return out, nil
}

func addMonths(month string, n int) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.AddDate(0, n, 0).Format("2006-01")
}

// Funnel tracks customers from lead to completed service.
type Funnel struct {
	Leads          int64
	Scheduled      int64
	Completed      int64
	LeadToSchedule float64
	ScheduleToDone float64
}

// FetchFunnel counts all customers, customers with any service
// request, and customers with a completed one. Conversion percentages
// are zero when the upstream stage is empty.
func (s *Store) FetchFunnel(ctx context.Context) (Funnel, error) {
	var out Funnel

	leads, err := s.customers.CountDocuments(ctx, bson.M{})
	if err != nil {
		return out, err
	}
	out.Leads = leads

	scheduled, err := s.distinctCustomerCount(ctx, bson.M{})
	if err != nil {
		return out, err
	}
	out.Scheduled = scheduled

	completed, err := s.distinctCustomerCount(ctx, bson.M{"status": models.StatusCompleted})
	if err != nil {
		return out, err
	}
	out.Completed = completed

	if out.Leads > 0 {
		out.LeadToSchedule = float64(out.Scheduled) / float64(out.Leads) * 100
	}
	if out.Scheduled > 0 {
		out.ScheduleToDone = float64(out.Completed) / float64(out.Scheduled) * 100
	}
	return out, nil
}

func (s *Store) distinctCustomerCount(ctx context.Context, match bson.M) (int64, error) {
	ids, err := s.requests.Distinct(ctx, "customer_id", match)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}
