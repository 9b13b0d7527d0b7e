// Package repository implements data persistence for the key vault.
//
// The key vault is a dedicated MongoDB collection holding wrapped data encryption keys.
// The document layout matches what the storage driver reads when it decrypts fields
// automatically:
//
//	{
//	  _id:          Binary(subtype 4),   // KeyID
//	  keyAltNames:  [string],            // omitted when the key has no alternate names
//	  keyMaterial:  Binary(subtype 0),   // wrapped by masterKey, never the plaintext
//	  creationDate: Date,
//	  updateDate:   Date,
//	  status:       int32,
//	  masterKey:    { provider: string, <locator fields> }
//	}
//
// Keys wrapped by a cloud KMS (gcp, aws, azure) can be unwrapped by the driver through
// the same master key. Keys under the local provider are sealed with secretbox and are
// only readable by this tool, so that provider is for development and tests.
//
// # Uniqueness
//
// EnsureIndex creates a unique index on keyAltNames with a partial filter on
// {keyAltNames: {$exists: true}}, so keys without alternate names are exempt. Creating
// two keys sharing an alternate name yields exactly one success and one
// ErrDuplicateKeyName, regardless of call order or concurrency.
//
// # Usage Example
//
//	repo := repository.NewMongoKeyVaultRepository(client.Database("encryption").Collection("__keyVault"))
//	if err := repo.EnsureIndex(ctx); err != nil {
//	    return err
//	}
//	err := repo.Create(ctx, dataKey)
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// AltNameIndexName is the name of the partial unique index on keyAltNames.
const AltNameIndexName = "keyAltNames_1"

// dataKeyDocument is the stored shape of a data key.
type dataKeyDocument struct {
	ID           bson.Binary `bson:"_id"`
	KeyAltNames  []string    `bson:"keyAltNames,omitempty"`
	KeyMaterial  bson.Binary `bson:"keyMaterial"`
	CreationDate time.Time   `bson:"creationDate"`
	UpdateDate   time.Time   `bson:"updateDate"`
	Status       int32       `bson:"status"`
	MasterKey    bson.D      `bson:"masterKey"`
}

// MongoKeyVaultRepository implements key vault persistence on a MongoDB collection.
type MongoKeyVaultRepository struct {
	coll *mongo.Collection
}

// NewMongoKeyVaultRepository creates a repository over the key vault collection.
func NewMongoKeyVaultRepository(coll *mongo.Collection) *MongoKeyVaultRepository {
	return &MongoKeyVaultRepository{coll: coll}
}

// EnsureIndex creates the partial unique index on keyAltNames. Creating an index that
// already exists with the same specification is a no-op, so this is idempotent.
func (m *MongoKeyVaultRepository) EnsureIndex(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "keyAltNames", Value: 1}},
		Options: options.Index().
			SetName(AltNameIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.D{
				{Key: "keyAltNames", Value: bson.D{{Key: "$exists", Value: true}}},
			}),
	}

	if _, err := m.coll.Indexes().CreateOne(ctx, model); err != nil {
		return apperrors.Wrap(err, "failed to create key vault index")
	}
	return nil
}

// Create inserts a data key. A unique index violation is reported as ErrDuplicateKeyName.
func (m *MongoKeyVaultRepository) Create(ctx context.Context, key *vaultDomain.DataKey) error {
	doc := toDocument(key)
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %v", vaultDomain.ErrDuplicateKeyName, key.KeyAltNames)
		}
		return apperrors.Wrap(err, "failed to insert data key")
	}
	return nil
}

// Get retrieves a data key by identifier.
func (m *MongoKeyVaultRepository) Get(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error) {
	return m.findOne(ctx, bson.D{{Key: "_id", Value: id.Binary()}})
}

// GetByAltName retrieves the data key carrying the given alternate name.
func (m *MongoKeyVaultRepository) GetByAltName(ctx context.Context, name string) (*vaultDomain.DataKey, error) {
	return m.findOne(ctx, bson.D{{Key: "keyAltNames", Value: name}})
}

// List returns every data key ordered by creation date, oldest first.
func (m *MongoKeyVaultRepository) List(ctx context.Context) ([]*vaultDomain.DataKey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creationDate", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list data keys")
	}

	var docs []dataKeyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode data keys")
	}

	keys := make([]*vaultDomain.DataKey, 0, len(docs))
	for i := range docs {
		key, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Drop removes the whole key vault collection, including its indexes.
// Dropping a collection that does not exist is not an error.
func (m *MongoKeyVaultRepository) Drop(ctx context.Context) error {
	if err := m.coll.Drop(ctx); err != nil && !database.IsNamespaceNotFound(err) {
		return apperrors.Wrap(err, "failed to drop key vault")
	}
	return nil
}

// Namespace returns the "<database>.<collection>" the repository writes to.
func (m *MongoKeyVaultRepository) Namespace() string {
	return m.coll.Database().Name() + "." + m.coll.Name()
}

func (m *MongoKeyVaultRepository) findOne(ctx context.Context, filter bson.D) (*vaultDomain.DataKey, error) {
	var doc dataKeyDocument
	err := m.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, vaultDomain.ErrDataKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get data key")
	}
	return fromDocument(&doc)
}

func toDocument(key *vaultDomain.DataKey) *dataKeyDocument {
	return &dataKeyDocument{
		ID:           key.ID.Binary(),
		KeyAltNames:  key.KeyAltNames,
		KeyMaterial:  bson.Binary{Subtype: 0x00, Data: key.KeyMaterial},
		CreationDate: key.CreatedAt,
		UpdateDate:   key.UpdatedAt,
		Status:       int32(key.Status),
		MasterKey:    key.MasterKey.Document(),
	}
}

func fromDocument(doc *dataKeyDocument) (*vaultDomain.DataKey, error) {
	id, err := vaultDomain.KeyIDFromBinary(doc.ID)
	if err != nil {
		return nil, err
	}

	var provider string
	locator := make(map[string]string, len(doc.MasterKey))
	for _, e := range doc.MasterKey {
		value := fmt.Sprint(e.Value)
		if e.Key == "provider" {
			provider = value
			continue
		}
		locator[e.Key] = value
	}

	return &vaultDomain.DataKey{
		ID:          id,
		KeyAltNames: doc.KeyAltNames,
		KeyMaterial: doc.KeyMaterial.Data,
		CreatedAt:   doc.CreationDate.UTC(),
		UpdatedAt:   doc.UpdateDate.UTC(),
		Status:      int(doc.Status),
		MasterKey:   vaultDomain.MasterKeyReference{Provider: vaultDomain.Provider(provider), Locator: locator},
	}, nil
}
