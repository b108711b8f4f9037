// internal/app/store/servicerequests/srstore.go
package srstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/groomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrInvalidStatus is returned for a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid service request status")
	// ErrNotFound is returned when no request matches the given ID.
	ErrNotFound = errors.New("service request not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("service_requests")}
}

// GetByID loads one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceRequest, error) {
	var sr models.ServiceRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sr, nil
}

// Create inserts a request with timestamps stamped.
func (s *Store) Create(ctx context.Context, sr models.ServiceRequest) (models.ServiceRequest, error) {
	if sr.Status == "" {
		sr.Status = models.StatusPendingAssignment
	}
	if !models.IsValidStatus(sr.Status) {
		return models.ServiceRequest{}, ErrInvalidStatus
	}
	sr.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sr.CreatedAt = now
	sr.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sr); err != nil {
		return models.ServiceRequest{}, err
	}
	return sr, nil
}

// ListFilter narrows dispatch and grooming lists. Zero fields are
// ignored. DriverID scopes the list to one driver's assignments.
type ListFilter struct {
	Status   string
	From     time.Time
	To       time.Time
	DriverID *primitive.ObjectID
}

func (f ListFilter) match() bson.M {
	m := bson.M{}
	if f.Status != "" {
		m["status"] = f.Status
	}
	rng := bson.M{}
	if !f.From.IsZero() {
		rng["$gte"] = f.From
	}
	if !f.To.IsZero() {
		rng["$lt"] = f.To.AddDate(0, 0, 1)
	}
	if len(rng) > 0 {
		m["scheduled_date"] = rng
	}
	if f.DriverID != nil {
		m["driver_id"] = *f.DriverID
	}
	return m
}

// List returns requests matching the filter, soonest scheduled first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.ServiceRequest, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "scheduled_date", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, f.match(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ServiceRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets a request's status. Moving to Completed stamps
// completed_date; moving away from Completed clears it.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !models.IsValidStatus(status) {
		return ErrInvalidStatus
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":     status,
		"updated_at": now,
	}
	var unset bson.M
	if status == models.StatusCompleted {
		set["completed_date"] = now
	} else {
		unset = bson.M{"completed_date": ""}
	}

	update := bson.M{"$set": set}
	if unset != nil {
		update["$unset"] = unset
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignDriver links a driver to a request.
func (s *Store) AssignDriver(ctx context.Context, id, driverID primitive.ObjectID, driverName string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"driver_id":   driverID,
		"driver_name": driverName,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveSuggestion stores the driver's notes for a visit. Draft saves
// keep the suggestion editable; a final save clears the draft mark.
func (s *Store) SaveSuggestion(ctx context.Context, id primitive.ObjectID, sug models.DriverSuggestion) error {
	sug.UpdatedAt = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"driver_suggestion": sug,
		"updated_at":        sug.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPhotos appends pet photo rows to a request.
func (s *Store) AddPhotos(ctx context.Context, id primitive.ObjectID, photos []models.PetPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"pet_photos": bson.M{"$each": photos}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePhoto removes one photo row by its photo ID.
func (s *Store) DeletePhoto(ctx context.Context, id primitive.ObjectID, photoID string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"pet_photos": bson.M{"id": photoID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Financials is the money summary shown on the dispatch board.
type Financials struct {
	ScheduledTotal  float64
	CompletedTotal  float64
	ThreeDayAverage float64
	SevenDayAverage float64
}

// FetchFinancials sums scheduled and completed request amounts in the
// filter range, plus average completed revenue per day over the last 3
// and 7 days ending at now.
func (s *Store) FetchFinancials(ctx context.Context, f ListFilter, now time.Time) (Financials, error) {
	var out Financials

	rangeMatch := f.match()
	delete(rangeMatch, "status")

	sumByStatus := func(match bson.M) (float64, error) {
		cur, err := s.c.Aggregate(ctx, []bson.M{
			{"$match": match},
			{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total_amount"}}},
		})
		if err != nil {
			return 0, err
		}
		defer cur.Close(ctx)
		var rows []struct {
			Total float64 `bson:"total"`
		}
		if err := cur.All(ctx, &rows); err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			return 0, nil
		}
		return rows[0].Total, nil
	}

	scheduled := cloneMatch(rangeMatch)
	scheduled["status"] = models.StatusScheduled
	var err error
	if out.ScheduledTotal, err = sumByStatus(scheduled); err != nil {
		return out, err
	}

	completed := cloneMatch(rangeMatch)
	completed["status"] = models.StatusCompleted
	if out.CompletedTotal, err = sumByStatus(completed); err != nil {
		return out, err
	}

	trailing := func(days int) (float64, error) {
		match := bson.M{
			"status":         models.StatusCompleted,
			"completed_date": bson.M{"$gte": now.AddDate(0, 0, -days), "$lte": now},
		}
		if f.DriverID != nil {
			match["driver_id"] = *f.DriverID
		}
		total, err := sumByStatus(match)
		if err != nil {
			return 0, err
		}
		return total / float64(days), nil
	}

	if out.ThreeDayAverage, err = trailing(3); err != nil {
		return out, err
	}
	if out.SevenDayAverage, err = trailing(7); err != nil {
		return out, err
	}
	return out, nil
}

func cloneMatch(m bson.M) bson.M {
	out := make(bson.M, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
