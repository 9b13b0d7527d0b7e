// Package domain defines the schema provisioning domain model.
//
// An EncryptionPolicy declares, per collection, which field paths are encrypted, with which
// algorithm and which expected value type. Compiling a policy against a data key identifier
// yields a CompiledSchema: the $jsonSchema validator the storage driver enforces. A Registry
// is the ordered list of (collection, policy) pairs provisioned in one run.
//
// Fields not listed in a policy are stored in plaintext.
package domain

import (
	"fmt"
	"strings"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// FieldPolicy binds one field path to an algorithm and expected value type.
type FieldPolicy struct {
	// Path is the dotted field path, e.g. "owner.email".
	Path string
	// BSONType is the expected value type.
	BSONType BSONType
	// Algorithm is the algorithm tag or one of its aliases.
	Algorithm Algorithm
	// KeyID overrides the schema's default data key for this field. Zero means default.
	KeyID vaultDomain.KeyID
}

// EncryptionPolicy is the declarative encryption policy of one collection.
type EncryptionPolicy struct {
	Fields []FieldPolicy
}

// ParseFieldSpec parses the "<algorithm>-<bsonType>" shorthand, e.g. "randomized-string"
// or "deterministic-long". Algorithm and type are validated at compile time.
func ParseFieldSpec(path, spec string) (FieldPolicy, error) {
	idx := strings.LastIndex(spec, "-")
	if idx <= 0 || idx == len(spec)-1 {
		return FieldPolicy{}, fmt.Errorf("%w: field spec %q, expected <algorithm>-<bsonType>", ErrUnknownAlgorithmTag, spec)
	}
	return FieldPolicy{
		Path:      path,
		Algorithm: Algorithm(spec[:idx]),
		BSONType:  BSONType(spec[idx+1:]),
	}, nil
}

// ValidateFieldPath checks a dotted field path.
func ValidateFieldPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidFieldPath)
	}
	for segment := range strings.SplitSeq(path, ".") {
		if segment == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidFieldPath, path)
		}
		if strings.HasPrefix(segment, "$") {
			return fmt.Errorf("%w: %q segment starts with $", ErrInvalidFieldPath, path)
		}
		if strings.ContainsRune(segment, 0) {
			return fmt.Errorf("%w: %q contains a null byte", ErrInvalidFieldPath, path)
		}
	}
	if path == "_id" || strings.HasPrefix(path, "_id.") {
		return fmt.Errorf("%w: %q, _id cannot be encrypted", ErrInvalidFieldPath, path)
	}
	return nil
}
