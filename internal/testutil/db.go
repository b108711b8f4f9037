package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TestContext returns a context with a generous timeout for test DB work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestClient is SetupTestDB for tests that need the client
// itself, such as health checks.
func SetupTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	return SetupTestDB(t).Client()
}

// SetupTestDB connects to the MongoDB instance named by
// GROOMHUB_TEST_MONGO_URI and returns a per-test database that is
// dropped on cleanup. Tests that need a live database are skipped when
// the variable is unset so the suite still runs without infrastructure.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("GROOMHUB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("GROOMHUB_TEST_MONGO_URI not set; skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		t.Fatalf("mongo ping: %v", err)
	}

	dbName := fmt.Sprintf("groomhub_test_%d", time.Now().UnixNano())
	db := client.Database(dbName)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}
