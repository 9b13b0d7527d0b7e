package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaUsecase "github.com/allisson/fieldvault/internal/schema/usecase"
)

// RunDropEncryptedData drops every registry collection present in the target database.
// confirm must equal the database name.
//
// Requirements: the document store must be reachable.
func RunDropEncryptedData(
	ctx context.Context,
	provisioner schemaUsecase.ProvisionerUseCase,
	registry *schemaDomain.Registry,
	logger *slog.Logger,
	out io.Writer,
	confirm string,
) error {
	existing, err := provisioner.ExistingCollections(ctx, registry.Names())
	if err != nil {
		return fmt.Errorf("failed to inspect encrypted collections: %w", err)
	}

	dropped, err := provisioner.DropCollections(ctx, &schemaDomain.DropCollectionsInput{
		Confirm:     confirm,
		Collections: existing,
	})
	for _, name := range dropped {
		_, _ = fmt.Fprintf(out, "Dropped %s\n", name)
	}
	if err != nil {
		return fmt.Errorf("failed to drop encrypted collections: %w", err)
	}

	logger.Info("encrypted collections dropped", slog.Int("count", len(dropped)))
	if len(dropped) == 0 {
		_, err = fmt.Fprintln(out, "No encrypted collections to drop")
	}
	return err
}
