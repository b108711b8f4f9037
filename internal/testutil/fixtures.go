package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	if rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context); ok {
		rctx.URLParams.Add(key, value)
		return r
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCustomer creates a test customer with the given name and pets.
func (f *Fixtures) CreateCustomer(ctx context.Context, name string, pets ...models.Pet) models.Customer {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Customer{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Phone:     "9000000000",
		Pets:      pets,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("customers").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test customer: %v", err)
	}
	return c
}

// CreateServiceRequest creates a test service request for a customer.
func (f *Fixtures) CreateServiceRequest(ctx context.Context, customer models.Customer, status string, scheduled time.Time, amount float64) models.ServiceRequest {
	f.t.Helper()

	now := time.Now().UTC()
	sr := models.ServiceRequest{
		ID:            primitive.NewObjectID(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Status:        status,
		ScheduledDate: scheduled,
		TotalAmount:   amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == models.StatusCompleted {
		sr.CompletedDate = &scheduled
	}
	if _, err := f.db.Collection("service_requests").InsertOne(ctx, sr); err != nil {
		f.t.Fatalf("failed to create test service request: %v", err)
	}
	return sr
}

// AssignDriver sets the driver on a service request fixture.
func (f *Fixtures) AssignDriver(ctx context.Context, sr models.ServiceRequest, driverID primitive.ObjectID, driverName string) {
	f.t.Helper()

	_, err := f.db.Collection("service_requests").UpdateOne(ctx,
		bson.M{"_id": sr.ID},
		bson.M{"$set": bson.M{
			"driver_id":   driverID,
			"driver_name": driverName,
		}},
	)
	if err != nil {
		f.t.Fatalf("failed to assign driver: %v", err)
	}
}

// CreateCallLog creates a test call record.
func (f *Fixtures) CreateCallLog(ctx context.Context, agentNumber, direction, status string, start time.Time, seconds int) models.CallLog {
	f.t.Helper()

	cl := models.CallLog{
		ID:              primitive.NewObjectID(),
		AgentNumber:     agentNumber,
		CustomerNumber:  "9000000001",
		Direction:       direction,
		Status:          status,
		StartTime:       start,
		DurationSeconds: seconds,
		CreatedAt:       start,
	}
	if _, err := f.db.Collection("call_logs").InsertOne(ctx, cl); err != nil {
		f.t.Fatalf("failed to create test call log: %v", err)
	}
	return cl
}

// CreateAgent creates a test agent line mapping.
func (f *Fixtures) CreateAgent(ctx context.Context, number, name string) models.Agent {
	f.t.Helper()

	a := models.Agent{
		ID:     primitive.NewObjectID(),
		Number: number,
		Name:   name,
		Active: true,
	}
	if _, err := f.db.Collection("agents").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test agent: %v", err)
	}
	return a
}
