package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// CollectionRepository defines the interface for collection and validator management.
type CollectionRepository interface {
	Database() string
	Inspect(ctx context.Context, name string) (*schemaDomain.CollectionState, error)
	Create(ctx context.Context, name string, validator bson.D) error
	UpdateValidator(ctx context.Context, name string, validator bson.D) error
	Drop(ctx context.Context, name string) error
}

// KeyResolver yields the data key a provisioning run compiles schemas against.
type KeyResolver interface {
	ResolveKey(ctx context.Context) (vaultDomain.KeyID, error)
}

// ProvisionerUseCase converges live collections to compiled schemas.
type ProvisionerUseCase interface {
	// Apply creates the collection with the schema as validator, or replaces the validator
	// of an existing collection. Applying the same schema twice is a no-op.
	Apply(ctx context.Context, name string, schema *schemaDomain.CompiledSchema) (schemaDomain.ProvisionAction, error)

	// ExistingCollections returns, in input order, the names that exist in the target database.
	ExistingCollections(ctx context.Context, names []string) ([]string, error)

	// DropCollections drops the listed collections after checking the confirmation token.
	// Returns the names dropped before any error.
	DropCollections(ctx context.Context, input *schemaDomain.DropCollectionsInput) ([]string, error)
}

// DriverUseCase runs the full registry.
type DriverUseCase interface {
	// Run provisions every registry entry and returns the run report. The returned error is
	// non-nil only when the run could not start or was aborted; per-collection failures are
	// reported through Report.
	Run(ctx context.Context, registry *schemaDomain.Registry) (*schemaDomain.Report, error)

	// State returns the state of the latest run.
	State() schemaDomain.RunState
}
