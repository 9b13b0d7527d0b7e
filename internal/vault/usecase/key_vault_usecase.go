// Package usecase implements business logic orchestration for the key vault.
//
// The key vault use case guarantees a valid data encryption key exists before any schema
// is compiled against it, and that the vault's alternate-name index exists. It coordinates
// the KMS connector (wrap/unwrap under the master key) with the key vault repository.
//
// # Failure Semantics
//
//   - ErrKmsUnavailable: the KMS round-trip failed. Nothing was persisted; retry freely.
//   - ErrVaultWriteFailed: the KMS wrapped the key but persistence failed. The wrapped key
//     exists outside the vault and must be treated as leaked (audit or revoke KMS-side).
//   - ErrDuplicateKeyName: another key already carries one of the alternate names.
//
// Nothing is retried automatically.
//
// # Usage Example
//
//	uc := usecase.NewKeyVaultUseCase(repo, kmsConnector, logger)
//	if err := uc.InitializeVault(ctx); err != nil {
//	    return err
//	}
//	key, err := uc.CreateDataKey(ctx, masterKeyRef, nil)
//	fmt.Println(key.ID) // base64
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	customValidation "github.com/allisson/fieldvault/internal/validation"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultService "github.com/allisson/fieldvault/internal/vault/service"
)

// keyVaultUseCase implements KeyVaultUseCase.
type keyVaultUseCase struct {
	repo   KeyVaultRepository
	kms    vaultService.KMSConnector
	logger *slog.Logger
	now    func() time.Time
}

// InitializeVault ensures the alternate-name uniqueness constraint exists.
func (k *keyVaultUseCase) InitializeVault(ctx context.Context) error {
	if err := k.repo.EnsureIndex(ctx); err != nil {
		return err
	}
	k.logger.Info("key vault initialized", slog.String("namespace", k.repo.Namespace()))
	return nil
}

// ResetVault drops the key vault after checking the operator's confirmation and the
// absence of dependent encrypted collections.
func (k *keyVaultUseCase) ResetVault(ctx context.Context, input *vaultDomain.ResetVaultInput) error {
	namespace := k.repo.Namespace()
	if input == nil || input.Confirm != namespace {
		return fmt.Errorf("%w: confirm with the key vault namespace %q", vaultDomain.ErrResetNotConfirmed, namespace)
	}

	if len(input.DependentCollections) > 0 {
		if !input.Force {
			return fmt.Errorf("%w: %v", vaultDomain.ErrDependentDataPresent, input.DependentCollections)
		}
		k.logger.Warn("resetting key vault while encrypted collections still exist",
			slog.Any("collections", input.DependentCollections),
		)
	}

	if err := k.repo.Drop(ctx); err != nil {
		return err
	}

	k.logger.Warn("key vault dropped", slog.String("namespace", namespace))
	return nil
}

// CreateDataKey generates fresh key material, wraps it with the master key and persists
// the wrapped record. The plaintext is zeroed before returning.
func (k *keyVaultUseCase) CreateDataKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	altNames []string,
) (*vaultDomain.DataKey, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := validateAltNames(altNames); err != nil {
		return nil, err
	}

	plaintext := make([]byte, vaultDomain.DataKeyLength)
	defer vaultDomain.Zero(plaintext)
	if _, err := rand.Read(plaintext); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate key material")
	}

	wrapped, err := k.kms.WrapKey(ctx, ref, plaintext)
	if err != nil {
		if errors.Is(err, vaultDomain.ErrKmsUnavailable) || errors.Is(err, vaultDomain.ErrInvalidMasterKey) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", vaultDomain.ErrKmsUnavailable, err)
	}

	now := k.now().UTC().Truncate(time.Millisecond)
	key := &vaultDomain.DataKey{
		ID:          vaultDomain.NewKeyID(),
		KeyAltNames: append([]string(nil), altNames...),
		KeyMaterial: wrapped,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      vaultDomain.DataKeyStatus,
		MasterKey:   ref,
	}
	if len(key.KeyAltNames) == 0 {
		key.KeyAltNames = nil
	}

	if err := k.repo.Create(ctx, key); err != nil {
		if errors.Is(err, vaultDomain.ErrDuplicateKeyName) {
			return nil, err
		}
		k.logger.Error("wrapped data key could not be persisted, revoke or audit it on the KMS side",
			slog.String("key_id", key.ID.String()),
			slog.String("provider", string(ref.Provider)),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: key %s: %v", vaultDomain.ErrVaultWriteFailed, key.ID, err)
	}

	k.logger.Info("data key created",
		slog.String("key_id", key.ID.String()),
		slog.String("provider", string(ref.Provider)),
		slog.Any("alt_names", key.KeyAltNames),
	)
	if ref.Provider == vaultDomain.ProviderLocal {
		k.logger.Warn("local provider keys are not readable by the storage driver, use only for development",
			slog.String("key_id", key.ID.String()),
		)
	}
	return key, nil
}

// EnsureDataKey finds the key carrying altName or creates it. A concurrent creator
// winning the race is resolved by reading back its key.
func (k *keyVaultUseCase) EnsureDataKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	altName string,
) (*vaultDomain.DataKey, bool, error) {
	if err := validateAltNames([]string{altName}); err != nil {
		return nil, false, err
	}

	key, err := k.repo.GetByAltName(ctx, altName)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, vaultDomain.ErrDataKeyNotFound) {
		return nil, false, err
	}

	key, err = k.CreateDataKey(ctx, ref, []string{altName})
	if err == nil {
		return key, true, nil
	}
	if !errors.Is(err, vaultDomain.ErrDuplicateKeyName) {
		return nil, false, err
	}

	key, err = k.repo.GetByAltName(ctx, altName)
	if err != nil {
		return nil, false, err
	}
	return key, false, nil
}

// GetDataKey retrieves a data key by identifier.
func (k *keyVaultUseCase) GetDataKey(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error) {
	return k.repo.Get(ctx, id)
}

// ListDataKeys returns every key in the vault, oldest first.
func (k *keyVaultUseCase) ListDataKeys(ctx context.Context) ([]*vaultDomain.DataKey, error) {
	return k.repo.List(ctx)
}

// VerifyDataKey proves the master key still authorizes the data key.
func (k *keyVaultUseCase) VerifyDataKey(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error) {
	key, err := k.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	plaintext, err := k.kms.UnwrapKey(ctx, key.MasterKey, key.KeyMaterial)
	defer vaultDomain.Zero(plaintext)
	if err != nil {
		return nil, err
	}

	if len(plaintext) != vaultDomain.DataKeyLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			vaultDomain.ErrInvalidKeyMaterial, vaultDomain.DataKeyLength, len(plaintext))
	}
	return key, nil
}

func validateAltNames(altNames []string) error {
	seen := make(map[string]struct{}, len(altNames))
	for _, name := range altNames {
		err := validation.Validate(name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		)
		if err != nil {
			return fmt.Errorf("%w: %q %v", vaultDomain.ErrInvalidAltName, name, err)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q repeated", vaultDomain.ErrInvalidAltName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// NewKeyVaultUseCase creates a new KeyVaultUseCase.
func NewKeyVaultUseCase(
	repo KeyVaultRepository,
	kms vaultService.KMSConnector,
	logger *slog.Logger,
) KeyVaultUseCase {
	return &keyVaultUseCase{
		repo:   repo,
		kms:    kms,
		logger: logger,
		now:    time.Now,
	}
}
