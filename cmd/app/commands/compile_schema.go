package commands

import (
	"encoding/json"
	"fmt"
	"io"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaService "github.com/allisson/fieldvault/internal/schema/service"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// RunCompileSchema compiles the registry against keyIDStr and prints each validator as
// relaxed extended JSON. The store and the KMS are never contacted. When collection is
// set only that entry is compiled.
func RunCompileSchema(
	registry *schemaDomain.Registry,
	out io.Writer,
	keyIDStr string,
	collection string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keyID, err := vaultDomain.ParseKeyID(keyIDStr)
	if err != nil {
		return err
	}

	validators := make(map[string]json.RawMessage)
	var found bool
	for _, entry := range registry.Entries {
		if collection != "" && entry.Name != collection {
			continue
		}
		found = true

		schema, err := schemaService.Compile(entry.Policy, keyID)
		if err != nil {
			return fmt.Errorf("collection %s: %w", entry.Name, err)
		}
		extJSON, err := schema.ExtJSON()
		if err != nil {
			return fmt.Errorf("collection %s: failed to render validator: %w", entry.Name, err)
		}

		if format == "json" {
			validators[entry.Name] = extJSON
			continue
		}
		if _, err := fmt.Fprintf(out, "# %s\n%s\n", entry.Name, extJSON); err != nil {
			return err
		}
	}

	if !found && collection != "" {
		return fmt.Errorf("%w: %s is not in the registry", schemaDomain.ErrCollectionNotFound, collection)
	}
	if format == "json" {
		return writeJSON(out, validators)
	}
	return nil
}
