package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaUsecase "github.com/allisson/fieldvault/internal/schema/usecase"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// RunResetVault drops the key vault collection. confirm must equal the key vault
// namespace. The reset is refused while any registry collection still exists, because its
// encrypted data would become permanently undecryptable; force overrides that check.
// Encrypted collections are never dropped here, see RunDropEncryptedData.
//
// Requirements: the document store must be reachable.
func RunResetVault(
	ctx context.Context,
	keyVault vaultUsecase.KeyVaultUseCase,
	provisioner schemaUsecase.ProvisionerUseCase,
	registry *schemaDomain.Registry,
	logger *slog.Logger,
	out io.Writer,
	confirm string,
	force bool,
) error {
	dependents, err := provisioner.ExistingCollections(ctx, registry.Names())
	if err != nil {
		return fmt.Errorf("failed to inspect encrypted collections: %w", err)
	}

	if len(dependents) > 0 && force {
		logger.Warn("resetting key vault while encrypted collections exist",
			slog.Any("collections", dependents),
		)
	}

	err = keyVault.ResetVault(ctx, &vaultDomain.ResetVaultInput{
		Confirm:              confirm,
		DependentCollections: dependents,
		Force:                force,
	})
	if err != nil {
		return fmt.Errorf("failed to reset key vault: %w", err)
	}

	_, err = fmt.Fprintln(out, "Key vault reset")
	return err
}
