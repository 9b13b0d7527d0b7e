package domain

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// binarySubtypeUUID is the BSON binary subtype the store uses for data key identifiers.
const binarySubtypeUUID byte = 0x04

// KeyID is the fixed-length identifier of a data key. It is stored and embedded into
// schemas as a BSON binary of subtype 4 and shown to operators in standard base64.
type KeyID [16]byte

// NewKeyID returns a fresh random (version 4) key identifier.
func NewKeyID() KeyID {
	return KeyID(uuid.New())
}

// ParseKeyID decodes the base64 textual form of a key identifier.
func ParseKeyID(s string) (KeyID, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return KeyID{}, fmt.Errorf("%w: %q is not valid base64", ErrInvalidKeyID, s)
	}
	if len(raw) != len(KeyID{}) {
		return KeyID{}, fmt.Errorf("%w: expected 16 bytes, got %d", ErrInvalidKeyID, len(raw))
	}
	var id KeyID
	copy(id[:], raw)
	return id, nil
}

// KeyIDFromBinary converts a BSON binary value back into a KeyID.
func KeyIDFromBinary(b bson.Binary) (KeyID, error) {
	if b.Subtype != binarySubtypeUUID {
		return KeyID{}, fmt.Errorf("%w: binary subtype %#x", ErrInvalidKeyID, b.Subtype)
	}
	if len(b.Data) != len(KeyID{}) {
		return KeyID{}, fmt.Errorf("%w: expected 16 bytes, got %d", ErrInvalidKeyID, len(b.Data))
	}
	var id KeyID
	copy(id[:], b.Data)
	return id, nil
}

// String returns the base64 form, stable across runs and safe to log.
func (k KeyID) String() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// Binary returns the BSON binary (subtype 4) form used in the vault and in schemas.
func (k KeyID) Binary() bson.Binary {
	data := make([]byte, len(k))
	copy(data, k[:])
	return bson.Binary{Subtype: binarySubtypeUUID, Data: data}
}

// IsZero reports whether k is the zero identifier.
func (k KeyID) IsZero() bool {
	return k == KeyID{}
}
