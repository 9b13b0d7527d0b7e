package domain

import (
	"fmt"
	"strings"
)

// Entry is one (collection name, policy) pair of the registry.
type Entry struct {
	Name   string
	Policy EncryptionPolicy
}

// Registry is the ordered set of collections provisioned in one run.
type Registry struct {
	Entries []Entry
}

// Validate checks collection names and their uniqueness.
func (r *Registry) Validate() error {
	seen := make(map[string]struct{}, len(r.Entries))
	for i, entry := range r.Entries {
		if err := ValidateCollectionName(entry.Name); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if _, ok := seen[entry.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCollection, entry.Name)
		}
		seen[entry.Name] = struct{}{}
	}
	return nil
}

// Names returns the collection names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		names = append(names, entry.Name)
	}
	return names
}

// ValidateCollectionName checks a collection name against the store's naming rules.
func ValidateCollectionName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty collection name", ErrInvalidRegistry)
	case strings.ContainsAny(name, "$\x00"):
		return fmt.Errorf("%w: collection name %q contains $ or a null byte", ErrInvalidRegistry, name)
	case strings.HasPrefix(name, "system."):
		return fmt.Errorf("%w: collection name %q uses the reserved system. prefix", ErrInvalidRegistry, name)
	}
	return nil
}
