// Package service provides the KMS boundary for the key vault.
//
// A KMSConnector wraps a configured KMS credential set. It is only used to authorize
// wrap and unwrap operations of data key material under a master key; the key material
// itself never leaves this boundary in cleartext logs.
package service

import (
	"context"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// KMSConnector wraps and unwraps data key material with an external master key.
type KMSConnector interface {
	// WrapKey encrypts plaintext key material under the referenced master key.
	WrapKey(ctx context.Context, ref vaultDomain.MasterKeyReference, plaintext []byte) ([]byte, error)

	// UnwrapKey decrypts wrapped key material with the referenced master key.
	UnwrapKey(ctx context.Context, ref vaultDomain.MasterKeyReference, wrapped []byte) ([]byte, error)

	// Close releases every keeper opened by the connector.
	Close() error
}
