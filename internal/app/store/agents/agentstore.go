// internal/app/store/agents/agentstore.go
package agentstore

import (
	"context"

	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NoAgentLabel is the display bucket for calls that the telephony
// provider could not attribute to a line.
const NoAgentLabel = "No Agent"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("agents")}
}

// List returns all agents sorted by line number.
func (s *Store) List(ctx context.Context) ([]models.Agent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var agents []models.Agent
	if err := cur.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// NameMap returns a lookup from agent line number to display name.
// Unknown numbers are resolved by the caller to the raw number.
func (s *Store) NameMap(ctx context.Context) (map[string]string, error) {
	agents, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(agents))
	for _, a := range agents {
		m[a.Number] = a.Name
	}
	return m, nil
}

// DisplayName resolves an agent number against a NameMap. Empty numbers
// map to the NoAgentLabel bucket; unknown numbers fall back to the raw
// number.
func DisplayName(names map[string]string, number string) string {
	if number == "" {
		return NoAgentLabel
	}
	if name, ok := names[number]; ok && name != "" {
		return name
	}
	return number
}

// Upsert creates or updates the agent record for a line number.
func (s *Store) Upsert(ctx context.Context, number, name string) error {
	number = normalize.QueryParam(number)
	update := bson.M{
		"$set": bson.M{
			"name":   normalize.Name(name),
			"active": true,
		},
		"$setOnInsert": bson.M{
			"_id":    primitive.NewObjectID(),
			"number": number,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"number": number}, update, opts)
	if wafflemongo.IsDup(err) {
		return nil
	}
	return err
}

// Count returns the number of agent records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
