package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// RunInitVault creates the key vault's unique alternate-name index. Safe to run on every
// deploy: an existing index is left untouched.
//
// Requirements: the document store must be reachable.
func RunInitVault(
	ctx context.Context,
	keyVault vaultUsecase.KeyVaultUseCase,
	logger *slog.Logger,
	out io.Writer,
) error {
	logger.Info("initializing key vault")

	if err := keyVault.InitializeVault(ctx); err != nil {
		return fmt.Errorf("failed to initialize key vault: %w", err)
	}

	_, err := fmt.Fprintln(out, "Key vault initialized")
	return err
}
