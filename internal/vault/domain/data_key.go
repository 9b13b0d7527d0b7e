// Package domain defines the key vault domain model for envelope encryption.
//
// Data encryption keys (DEKs) are generated here, wrapped by an external KMS master key
// and stored in a dedicated key vault collection. Only the wrapped form is ever persisted;
// the storage driver unwraps keys on demand when it encrypts or decrypts fields.
package domain

import (
	"time"
)

// DataKeyLength is the size of generated key material, matching the store's
// AEAD_AES_256_CBC_HMAC_SHA_512 field encryption key.
const DataKeyLength = 96

// DataKeyStatus is the status value written to new key vault documents.
const DataKeyStatus = 0

// DefaultDataKeyAltName names the deployment data key when no other name is configured.
const DefaultDataKeyAltName = "fieldvault-default"

// DataKey is a data encryption key record as held by the key vault.
type DataKey struct {
	ID          KeyID              // Fixed-length identifier (UUID, binary subtype 4)
	KeyAltNames []string           // Optional alternate names, globally unique when present
	KeyMaterial []byte             // Key material wrapped by MasterKey, never the plaintext
	CreatedAt   time.Time          // Creation timestamp
	UpdatedAt   time.Time          // Last update timestamp (equal to CreatedAt, keys are never mutated)
	Status      int                // Store-defined status, always DataKeyStatus
	MasterKey   MasterKeyReference // Master key that wraps KeyMaterial
}

// HasAltName reports whether name is one of the key's alternate names.
func (d *DataKey) HasAltName(name string) bool {
	for _, n := range d.KeyAltNames {
		if n == name {
			return true
		}
	}
	return false
}
