package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// RunVerifyDataKey unwraps a stored data key through the KMS to prove the master key still
// authorizes it. The unwrapped material is discarded immediately.
//
// Requirements: the document store and the KMS must be reachable.
func RunVerifyDataKey(
	ctx context.Context,
	keyVault vaultUsecase.KeyVaultUseCase,
	logger *slog.Logger,
	out io.Writer,
	keyIDStr string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keyID, err := vaultDomain.ParseKeyID(keyIDStr)
	if err != nil {
		return err
	}

	key, err := keyVault.VerifyDataKey(ctx, keyID)
	if err != nil {
		return fmt.Errorf("failed to verify data key %s: %w", keyIDStr, err)
	}
	logger.Info("data key verified", slog.String("key_id", key.ID.String()))

	if format == "json" {
		return writeJSON(out, map[string]any{
			"key_id":   key.ID.String(),
			"provider": string(key.MasterKey.Provider),
			"verified": true,
		})
	}
	_, err = fmt.Fprintf(out, "Data key %s verified with %s master key\n", key.ID, key.MasterKey.Provider)
	return err
}
