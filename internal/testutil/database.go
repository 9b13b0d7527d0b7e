// Package testutil provides testing utilities for document store integration tests.
//
// Environment Variables:
//
// The store connection URI can be customized via environment variables:
//   - TEST_MONGO_URI: MongoDB connection URI (default: mongodb://localhost:27018/?directConnection=true)
//
// Database Setup:
//
//	client, db := testutil.SetupMongoDB(t)
//	coll := testutil.CreateTestCollection(t, db, "workspaces", 3)
//
// Every call to SetupMongoDB gets a fresh, uniquely named database that is dropped
// when the test finishes, so tests never share state.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	// Default test store URI (can be overridden via environment variable)
	defaultMongoTestURI = "mongodb://localhost:27018/?directConnection=true"

	testDatabasePrefix = "fieldvault_test_"
	connectTimeout     = 3 * time.Second
)

// GetMongoTestURI returns the MongoDB test URI, checking the environment variable first.
func GetMongoTestURI() string {
	if uri := os.Getenv("TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return defaultMongoTestURI
}

// TestDatabaseName returns a unique database name for one test.
func TestDatabaseName() string {
	return testDatabasePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SetupMongoDB connects to the test store and returns the client together with a fresh
// database. The test is skipped when the store is not reachable. The database is dropped
// and the client disconnected when the test finishes.
func SetupMongoDB(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()

	client := connect(t)

	db := client.Database(TestDatabaseName())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return client, db
}

// CreateTestCollection creates a collection and inserts n documents shaped
// {seq: i, name: "doc-i"}. Returns the collection handle.
func CreateTestCollection(t *testing.T, db *mongo.Database, name string, n int) *mongo.Collection {
	t.Helper()

	ctx := context.Background()
	err := db.CreateCollection(ctx, name)
	require.NoError(t, err, "failed to create test collection "+name)

	coll := db.Collection(name)
	if n == 0 {
		return coll
	}

	docs := make([]any, 0, n)
	for i := range n {
		docs = append(docs, bson.D{{Key: "seq", Value: i}, {Key: "name", Value: fmt.Sprintf("doc-%d", i)}})
	}
	_, err = coll.InsertMany(ctx, docs)
	require.NoError(t, err, "failed to insert test documents into "+name)
	return coll
}

// DumpCollection returns the raw bytes of every document in coll ordered by _id.
// Useful for asserting that an operation left stored documents untouched.
func DumpCollection(t *testing.T, coll *mongo.Collection) []bson.Raw {
	t.Helper()

	ctx := context.Background()
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	require.NoError(t, err, "failed to read collection "+coll.Name())
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []bson.Raw
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, raw)
	}
	require.NoError(t, cursor.Err())
	return docs
}

// SkipIfNoMongo skips the test if the MongoDB test store is not available.
func SkipIfNoMongo(t *testing.T) {
	t.Helper()
	client := connect(t)
	_ = client.Disconnect(context.Background())
}

func connect(t *testing.T) *mongo.Client {
	t.Helper()

	opts := options.Client().
		ApplyURI(GetMongoTestURI()).
		SetServerSelectionTimeout(connectTimeout).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB not available: %v", err)
	}
	return client
}
