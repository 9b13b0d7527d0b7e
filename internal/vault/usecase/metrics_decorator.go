package usecase

import (
	"context"
	"time"

	"github.com/allisson/fieldvault/internal/metrics"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// keyVaultUseCaseWithMetrics decorates KeyVaultUseCase with metrics instrumentation.
type keyVaultUseCaseWithMetrics struct {
	next    KeyVaultUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyVaultUseCaseWithMetrics wraps a KeyVaultUseCase with metrics recording.
func NewKeyVaultUseCaseWithMetrics(useCase KeyVaultUseCase, m metrics.BusinessMetrics) KeyVaultUseCase {
	return &keyVaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyVaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	k.metrics.Observe(ctx, metrics.DomainVault, operation, time.Since(start), err)
}

// InitializeVault records metrics for vault initialization.
func (k *keyVaultUseCaseWithMetrics) InitializeVault(ctx context.Context) error {
	start := time.Now()
	err := k.next.InitializeVault(ctx)
	k.record(ctx, "vault_initialize", start, err)
	return err
}

// ResetVault records metrics for vault resets.
func (k *keyVaultUseCaseWithMetrics) ResetVault(ctx context.Context, input *vaultDomain.ResetVaultInput) error {
	start := time.Now()
	err := k.next.ResetVault(ctx, input)
	k.record(ctx, "vault_reset", start, err)
	return err
}

// CreateDataKey records metrics for data key creation.
func (k *keyVaultUseCaseWithMetrics) CreateDataKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	altNames []string,
) (*vaultDomain.DataKey, error) {
	start := time.Now()
	key, err := k.next.CreateDataKey(ctx, ref, altNames)
	k.record(ctx, "data_key_create", start, err)
	return key, err
}

// EnsureDataKey records metrics for find-or-create data key lookups.
func (k *keyVaultUseCaseWithMetrics) EnsureDataKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	altName string,
) (*vaultDomain.DataKey, bool, error) {
	start := time.Now()
	key, created, err := k.next.EnsureDataKey(ctx, ref, altName)
	k.record(ctx, "data_key_ensure", start, err)
	return key, created, err
}

// GetDataKey records metrics for data key reads.
func (k *keyVaultUseCaseWithMetrics) GetDataKey(
	ctx context.Context,
	id vaultDomain.KeyID,
) (*vaultDomain.DataKey, error) {
	start := time.Now()
	key, err := k.next.GetDataKey(ctx, id)
	k.record(ctx, "data_key_get", start, err)
	return key, err
}

// ListDataKeys records metrics for data key listings.
func (k *keyVaultUseCaseWithMetrics) ListDataKeys(ctx context.Context) ([]*vaultDomain.DataKey, error) {
	start := time.Now()
	keys, err := k.next.ListDataKeys(ctx)
	k.record(ctx, "data_key_list", start, err)
	return keys, err
}

// VerifyDataKey records metrics for data key verification.
func (k *keyVaultUseCaseWithMetrics) VerifyDataKey(
	ctx context.Context,
	id vaultDomain.KeyID,
) (*vaultDomain.DataKey, error) {
	start := time.Now()
	key, err := k.next.VerifyDataKey(ctx, id)
	k.record(ctx, "data_key_verify", start, err)
	return key, err
}
