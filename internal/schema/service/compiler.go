// Package service provides the encryption schema compiler and the registry loader.
//
// Compile is a pure transform from an EncryptionPolicy and a data key identifier to the
// $jsonSchema validator the storage driver enforces. It performs no I/O and is
// deterministic: identical inputs always produce byte-identical output, which lets the
// provisioner detect no-op reapplication by comparing encoded validators.
//
// A policy such as
//
//	name:        randomized-string
//	owner.email: deterministic-string
//
// compiles, for key K1, to
//
//	{
//	  bsonType: "object",
//	  encryptMetadata: { keyId: [K1] },
//	  properties: {
//	    name:  { encrypt: { bsonType: "string", algorithm: "AEAD_AES_256_CBC_HMAC_SHA_512-Random" } },
//	    owner: { bsonType: "object", properties: {
//	      email: { encrypt: { bsonType: "string", algorithm: "AEAD_AES_256_CBC_HMAC_SHA_512-Deterministic" } }
//	    } }
//	  }
//	}
package service

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

type resolvedField struct {
	path      string
	bsonType  schemaDomain.BSONType
	algorithm schemaDomain.Algorithm
	keyID     vaultDomain.KeyID
}

type schemaNode struct {
	children map[string]*schemaNode
	field    *resolvedField
}

// ValidatePolicy runs every static check Compile performs without needing a key.
func ValidatePolicy(policy schemaDomain.EncryptionPolicy) error {
	_, err := resolvePolicy(policy)
	return err
}

// Compile builds the validator schema for policy with keyID as the default data key.
func Compile(policy schemaDomain.EncryptionPolicy, keyID vaultDomain.KeyID) (*schemaDomain.CompiledSchema, error) {
	if keyID.IsZero() {
		return nil, fmt.Errorf("%w: zero default key", vaultDomain.ErrInvalidKeyID)
	}

	fields, err := resolvePolicy(policy)
	if err != nil {
		return nil, err
	}

	root := &schemaNode{}
	for i := range fields {
		node := root
		for segment := range strings.SplitSeq(fields[i].path, ".") {
			if node.children == nil {
				node.children = make(map[string]*schemaNode)
			}
			child, ok := node.children[segment]
			if !ok {
				child = &schemaNode{}
				node.children[segment] = child
			}
			node = child
		}
		node.field = &fields[i]
	}

	doc := bson.D{
		{Key: "bsonType", Value: string(schemaDomain.BSONTypeObject)},
		{Key: "encryptMetadata", Value: bson.D{{Key: "keyId", Value: bson.A{keyID.Binary()}}}},
		{Key: "properties", Value: renderProperties(root, keyID)},
	}
	return &schemaDomain.CompiledSchema{KeyID: keyID, Document: doc}, nil
}

// resolvePolicy validates every field and returns them sorted by path.
func resolvePolicy(policy schemaDomain.EncryptionPolicy) ([]resolvedField, error) {
	if len(policy.Fields) == 0 {
		return nil, schemaDomain.ErrEmptyPolicy
	}

	fields := make([]resolvedField, 0, len(policy.Fields))
	seen := make(map[string]struct{}, len(policy.Fields))

	for _, f := range policy.Fields {
		if err := schemaDomain.ValidateFieldPath(f.Path); err != nil {
			return nil, err
		}
		if _, ok := seen[f.Path]; ok {
			return nil, fmt.Errorf("%w: %q listed twice", schemaDomain.ErrInvalidFieldPath, f.Path)
		}
		seen[f.Path] = struct{}{}

		alg, err := schemaDomain.ParseAlgorithm(string(f.Algorithm))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Path, err)
		}
		bsonType, err := schemaDomain.ParseBSONType(string(f.BSONType))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Path, err)
		}
		if alg.IsDeterministic() && !bsonType.AllowsDeterministic() {
			return nil, fmt.Errorf("%w: field %q has type %s", schemaDomain.ErrDeterministicType, f.Path, bsonType)
		}

		fields = append(fields, resolvedField{path: f.Path, bsonType: bsonType, algorithm: alg, keyID: f.KeyID})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].path < fields[j].path })

	// An encrypted field cannot also be the parent of another encrypted field.
	for _, f := range fields {
		for i, c := range f.path {
			if c != '.' {
				continue
			}
			if _, ok := seen[f.path[:i]]; ok {
				return nil, fmt.Errorf("%w: %q is nested under encrypted field %q",
					schemaDomain.ErrInvalidFieldPath, f.path, f.path[:i])
			}
		}
	}

	return fields, nil
}

func renderProperties(node *schemaNode, defaultKey vaultDomain.KeyID) bson.D {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(bson.D, 0, len(names))
	for _, name := range names {
		child := node.children[name]
		if child.field != nil {
			props = append(props, bson.E{Key: name, Value: renderEncrypt(child.field, defaultKey)})
			continue
		}
		props = append(props, bson.E{Key: name, Value: bson.D{
			{Key: "bsonType", Value: string(schemaDomain.BSONTypeObject)},
			{Key: "properties", Value: renderProperties(child, defaultKey)},
		}})
	}
	return props
}

func renderEncrypt(f *resolvedField, defaultKey vaultDomain.KeyID) bson.D {
	enc := make(bson.D, 0, 3)
	if !f.keyID.IsZero() && f.keyID != defaultKey {
		enc = append(enc, bson.E{Key: "keyId", Value: bson.A{f.keyID.Binary()}})
	}
	enc = append(enc,
		bson.E{Key: "bsonType", Value: string(f.bsonType)},
		bson.E{Key: "algorithm", Value: string(f.algorithm)},
	)
	return bson.D{{Key: "encrypt", Value: enc}}
}
