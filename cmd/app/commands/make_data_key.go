package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// RunMakeDataKey generates a data key wrapped under the configured master key and prints
// its base64 identifier to out. In text format only the identifier is printed so the
// output can be captured into EXISTING_DEK_B64.
//
// Requirements: the document store and the KMS must be reachable.
func RunMakeDataKey(
	ctx context.Context,
	keyVault vaultUsecase.KeyVaultUseCase,
	masterKey vaultDomain.MasterKeyReference,
	logger *slog.Logger,
	out io.Writer,
	altNames []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("creating data key",
		slog.String("provider", string(masterKey.Provider)),
		slog.Any("alt_names", altNames),
	)

	key, err := keyVault.CreateDataKey(ctx, masterKey, altNames)
	if err != nil {
		return fmt.Errorf("failed to create data key: %w", err)
	}

	logger.Info("data key created", slog.String("key_id", key.ID.String()))

	if format == "json" {
		return writeJSON(out, map[string]any{
			"key_id":     key.ID.String(),
			"alt_names":  key.KeyAltNames,
			"provider":   string(key.MasterKey.Provider),
			"created_at": key.CreatedAt,
			"status":     key.Status,
		})
	}
	_, err = fmt.Fprintln(out, key.ID.String())
	return err
}
