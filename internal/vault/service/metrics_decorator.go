package service

import (
	"context"
	"time"

	"github.com/allisson/fieldvault/internal/metrics"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// kmsConnectorWithMetrics decorates KMSConnector with KMS request metrics.
type kmsConnectorWithMetrics struct {
	next    KMSConnector
	metrics metrics.KMSMetrics
}

// NewKMSConnectorWithMetrics wraps a KMSConnector with request recording.
func NewKMSConnectorWithMetrics(connector KMSConnector, m metrics.KMSMetrics) KMSConnector {
	return &kmsConnectorWithMetrics{
		next:    connector,
		metrics: m,
	}
}

// WrapKey records metrics for wrap calls.
func (k *kmsConnectorWithMetrics) WrapKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	plaintext []byte,
) ([]byte, error) {
	start := time.Now()
	wrapped, err := k.next.WrapKey(ctx, ref, plaintext)
	k.metrics.RecordRequest(ctx, string(ref.Provider), "wrap", time.Since(start), err)
	return wrapped, err
}

// UnwrapKey records metrics for unwrap calls.
func (k *kmsConnectorWithMetrics) UnwrapKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	wrapped []byte,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := k.next.UnwrapKey(ctx, ref, wrapped)
	k.metrics.RecordRequest(ctx, string(ref.Provider), "unwrap", time.Since(start), err)
	return plaintext, err
}

// Close closes the decorated connector.
func (k *kmsConnectorWithMetrics) Close() error {
	return k.next.Close()
}
