// Package repository implements collection validator management on MongoDB.
//
// The repository is the only place that issues DDL against the target database:
// create (with a validator), collMod (validator replace), listCollections (inspect)
// and drop. Driver errors are translated into schema domain errors so the provisioner
// can branch on them:
//
//   - NamespaceExists (48) on create  -> ErrCollectionExists
//   - NamespaceNotFound (26) on collMod -> ErrCollectionNotFound
//   - network errors and timeouts     -> ErrStoreUnavailable
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/allisson/fieldvault/internal/database"
	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
)

type collectionSpec struct {
	Name    string `bson:"name"`
	Options struct {
		Validator bson.Raw `bson:"validator,omitempty"`
	} `bson:"options"`
}

// MongoCollectionRepository manages collections and their validators in one database.
type MongoCollectionRepository struct {
	db *mongo.Database
}

// NewMongoCollectionRepository creates a repository over db.
func NewMongoCollectionRepository(db *mongo.Database) *MongoCollectionRepository {
	return &MongoCollectionRepository{db: db}
}

// Database returns the name of the target database.
func (m *MongoCollectionRepository) Database() string {
	return m.db.Name()
}

// Inspect returns whether the collection exists and its live $jsonSchema validator.
func (m *MongoCollectionRepository) Inspect(ctx context.Context, name string) (*schemaDomain.CollectionState, error) {
	cursor, err := m.db.ListCollections(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return nil, translate(err, "failed to list collections")
	}

	var specs []collectionSpec
	if err := cursor.All(ctx, &specs); err != nil {
		return nil, translate(err, "failed to decode collection specification")
	}

	state := &schemaDomain.CollectionState{Name: name}
	if len(specs) == 0 {
		return state, nil
	}

	state.Exists = true
	if specs[0].Options.Validator != nil {
		if schema, ok := specs[0].Options.Validator.Lookup("$jsonSchema").DocumentOK(); ok {
			state.Schema = schema
		}
	}
	return state, nil
}

// Create creates the collection with validator installed.
func (m *MongoCollectionRepository) Create(ctx context.Context, name string, validator bson.D) error {
	opts := options.CreateCollection().SetValidator(validator)
	if err := m.db.CreateCollection(ctx, name, opts); err != nil {
		if database.IsNamespaceExists(err) {
			return fmt.Errorf("%w: %s", schemaDomain.ErrCollectionExists, name)
		}
		return translate(err, "failed to create collection "+name)
	}
	return nil
}

// UpdateValidator replaces the validator of an existing collection. Stored documents are
// left untouched; the validator applies to subsequent writes only.
func (m *MongoCollectionRepository) UpdateValidator(ctx context.Context, name string, validator bson.D) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := m.db.RunCommand(ctx, cmd).Err(); err != nil {
		if database.IsNamespaceNotFound(err) {
			return fmt.Errorf("%w: %s", schemaDomain.ErrCollectionNotFound, name)
		}
		return translate(err, "failed to update validator of "+name)
	}
	return nil
}

// Drop drops the collection. Dropping a missing collection is not an error.
func (m *MongoCollectionRepository) Drop(ctx context.Context, name string) error {
	if err := m.db.Collection(name).Drop(ctx); err != nil && !database.IsNamespaceNotFound(err) {
		return translate(err, "failed to drop collection "+name)
	}
	return nil
}

func translate(err error, message string) error {
	if database.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", schemaDomain.ErrStoreUnavailable, message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
