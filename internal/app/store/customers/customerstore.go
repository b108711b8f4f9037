// internal/app/store/customers/customerstore.go
package customerstore

import (
	"context"
	"time"

	"github.com/dalemusser/groomhub/internal/app/system/geoutil"
	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("customers")}
}

// GetByID loads one customer.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	var c models.Customer
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer with the folded search key and timestamps.
func (s *Store) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// Location is one map pin.
type Location struct {
	ID         primitive.ObjectID `json:"id"`
	Name       string             `json:"name"`
	Latitude   float64            `json:"lat"`
	Longitude  float64            `json:"lng"`
	LeadStatus string             `json:"status,omitempty"`
	Territory  string             `json:"territory,omitempty"`
}

// Bounds limits pins to a map viewport. Zero value means no limit.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b Bounds) isZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

func (b Bounds) contains(lat, lng float64) bool {
	if b.isZero() {
		return true
	}
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Locations returns map pins for customers with resolvable
// coordinates. Stored lat/lng wins; otherwise coordinates are parsed
// from the customer's Google Maps link. Customers with neither are
// omitted.
func (s *Store) Locations(ctx context.Context, leadStatus string, bounds Bounds) ([]Location, error) {
	match := bson.M{}
	if leadStatus != "" {
		match["lead_status"] = leadStatus
	}

	proj := options.Find().SetProjection(bson.M{
		"name":            1,
		"lead_status":     1,
		"territory":       1,
		"latitude":        1,
		"longitude":       1,
		"google_maps_url": 1,
	})
	cur, err := s.c.Find(ctx, match, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var customers []models.Customer
	if err := cur.All(ctx, &customers); err != nil {
		return nil, err
	}

	locs := make([]Location, 0, len(customers))
	for _, c := range customers {
		lat, lng, ok := resolveCoordinates(&c)
		if !ok || !bounds.contains(lat, lng) {
			continue
		}
		locs = append(locs, Location{
			ID:         c.ID,
			Name:       c.Name,
			Latitude:   lat,
			Longitude:  lng,
			LeadStatus: c.LeadStatus,
			Territory:  c.Territory,
		})
	}
	return locs, nil
}

func resolveCoordinates(c *models.Customer) (lat, lng float64, ok bool) {
	if c.HasCoordinates() {
		return *c.Latitude, *c.Longitude, true
	}
	if c.GoogleMapsURL != "" {
		return geoutil.ExtractCoordinates(c.GoogleMapsURL)
	}
	return 0, 0, false
}

// LeadStatuses returns the distinct lead statuses present, for the map
// filter dropdown.
func (s *Store) LeadStatuses(ctx context.Context) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "lead_status", bson.M{"lead_status": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
