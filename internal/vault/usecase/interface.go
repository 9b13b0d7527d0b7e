package usecase

import (
	"context"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// KeyVaultRepository defines the interface for key vault persistence.
type KeyVaultRepository interface {
	EnsureIndex(ctx context.Context) error
	Create(ctx context.Context, key *vaultDomain.DataKey) error
	Get(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error)
	GetByAltName(ctx context.Context, name string) (*vaultDomain.DataKey, error)
	List(ctx context.Context) ([]*vaultDomain.DataKey, error)
	Drop(ctx context.Context) error
	Namespace() string
}

// KeyVaultUseCase defines the interface for key vault lifecycle operations.
type KeyVaultUseCase interface {
	// InitializeVault ensures the partial unique index on alternate names exists. Idempotent.
	InitializeVault(ctx context.Context) error

	// ResetVault drops the whole key vault. It never touches encrypted collections:
	// callers drop those separately, before resetting.
	ResetVault(ctx context.Context, input *vaultDomain.ResetVaultInput) error

	// CreateDataKey generates key material, wraps it with the master key and persists it.
	CreateDataKey(
		ctx context.Context,
		ref vaultDomain.MasterKeyReference,
		altNames []string,
	) (*vaultDomain.DataKey, error)

	// EnsureDataKey returns the data key carrying altName, creating it when absent.
	// The boolean reports whether a new key was created.
	EnsureDataKey(
		ctx context.Context,
		ref vaultDomain.MasterKeyReference,
		altName string,
	) (*vaultDomain.DataKey, bool, error)

	GetDataKey(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error)
	ListDataKeys(ctx context.Context) ([]*vaultDomain.DataKey, error)

	// VerifyDataKey unwraps the stored key material through the KMS and checks its length.
	VerifyDataKey(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error)
}
