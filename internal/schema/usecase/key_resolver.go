package usecase

import (
	"context"
	"log/slog"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// KeySource selects the data key of a provisioning run, in order of precedence:
// an existing key identifier, then a find-or-create alternate name. Without either, the
// alternate name falls back to vaultDomain.DefaultDataKeyAltName, so repeated runs always
// converge on one key instead of minting a new one each time.
type KeySource struct {
	// ExistingKeyID is the base64 identifier of a key already in the vault.
	ExistingKeyID string
	// AltName finds the key carrying this alternate name, creating it when absent.
	AltName string
	// MasterKey wraps keys created during resolution.
	MasterKey vaultDomain.MasterKeyReference
}

// vaultKeyResolver resolves a KeySource through the key vault.
type vaultKeyResolver struct {
	vault  vaultUsecase.KeyVaultUseCase
	source KeySource
	logger *slog.Logger
}

// NewKeyResolver creates a KeyResolver backed by the key vault.
func NewKeyResolver(vault vaultUsecase.KeyVaultUseCase, source KeySource, logger *slog.Logger) KeyResolver {
	return &vaultKeyResolver{
		vault:  vault,
		source: source,
		logger: logger,
	}
}

// ResolveKey returns the run's data key identifier.
func (r *vaultKeyResolver) ResolveKey(ctx context.Context) (vaultDomain.KeyID, error) {
	switch {
	case r.source.ExistingKeyID != "":
		id, err := vaultDomain.ParseKeyID(r.source.ExistingKeyID)
		if err != nil {
			return vaultDomain.KeyID{}, err
		}
		key, err := r.vault.GetDataKey(ctx, id)
		if err != nil {
			return vaultDomain.KeyID{}, err
		}
		r.logger.Info("using existing data key", slog.String("key_id", key.ID.String()))
		return key.ID, nil

	default:
		altName := r.source.AltName
		if altName == "" {
			altName = vaultDomain.DefaultDataKeyAltName
		}
		key, created, err := r.vault.EnsureDataKey(ctx, r.source.MasterKey, altName)
		if err != nil {
			return vaultDomain.KeyID{}, err
		}
		r.logger.Info("resolved data key by alternate name",
			slog.String("key_id", key.ID.String()),
			slog.String("alt_name", altName),
			slog.Bool("created", created),
		)
		return key.ID, nil
	}
}
