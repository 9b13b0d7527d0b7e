package service

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

//go:embed registry.schema.json
var registrySchema []byte

type registryFile struct {
	Collections []collectionFile `yaml:"collections"`
}

type collectionFile struct {
	Name   string      `yaml:"name"`
	Fields []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	Path      string `yaml:"path"`
	Spec      string `yaml:"spec"`
	BSONType  string `yaml:"bsonType"`
	Algorithm string `yaml:"algorithm"`
	KeyID     string `yaml:"keyId"`
}

// LoadRegistry reads and parses the registry file at path.
func LoadRegistry(path string) (*schemaDomain.Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied registry path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaDomain.ErrInvalidRegistry, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses a YAML registry. The document structure is checked against the
// embedded JSON schema first; algorithm tags and value types are left for Compile so a bad
// entry fails only its own collection. Duplicate collection names fail the whole registry.
func ParseRegistry(data []byte) (*schemaDomain.Registry, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", schemaDomain.ErrInvalidRegistry, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", schemaDomain.ErrInvalidRegistry)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(registrySchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaDomain.ErrInvalidRegistry, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", schemaDomain.ErrInvalidRegistry, strings.Join(problems, "; "))
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", schemaDomain.ErrInvalidRegistry, err)
	}

	registry := &schemaDomain.Registry{Entries: make([]schemaDomain.Entry, 0, len(file.Collections))}
	for _, c := range file.Collections {
		entry := schemaDomain.Entry{Name: c.Name}
		for _, f := range c.Fields {
			policy, err := toFieldPolicy(f)
			if err != nil {
				return nil, fmt.Errorf("%w: collection %q: %v", schemaDomain.ErrInvalidRegistry, c.Name, err)
			}
			entry.Policy.Fields = append(entry.Policy.Fields, policy)
		}
		registry.Entries = append(registry.Entries, entry)
	}

	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

func toFieldPolicy(f fieldFile) (schemaDomain.FieldPolicy, error) {
	var (
		policy schemaDomain.FieldPolicy
		err    error
	)
	if f.Spec != "" {
		policy, err = schemaDomain.ParseFieldSpec(f.Path, f.Spec)
		if err != nil {
			return schemaDomain.FieldPolicy{}, err
		}
	} else {
		policy = schemaDomain.FieldPolicy{
			Path:      f.Path,
			BSONType:  schemaDomain.BSONType(f.BSONType),
			Algorithm: schemaDomain.Algorithm(f.Algorithm),
		}
	}

	if f.KeyID != "" {
		policy.KeyID, err = vaultDomain.ParseKeyID(f.KeyID)
		if err != nil {
			return schemaDomain.FieldPolicy{}, fmt.Errorf("field %q: %w", f.Path, err)
		}
	}
	return policy, nil
}
