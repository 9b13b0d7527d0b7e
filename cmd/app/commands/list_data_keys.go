package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// dataKeyView is the printed form of a data key. Key material is never printed.
type dataKeyView struct {
	KeyID     string    `json:"key_id"`
	AltNames  []string  `json:"alt_names"`
	Provider  string    `json:"provider"`
	MasterKey string    `json:"master_key"`
	CreatedAt time.Time `json:"created_at"`
}

// RunListDataKeys prints every data key in the vault, oldest first.
//
// Requirements: the document store must be reachable.
func RunListDataKeys(
	ctx context.Context,
	keyVault vaultUsecase.KeyVaultUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keys, err := keyVault.ListDataKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list data keys: %w", err)
	}
	logger.Info("data keys listed", slog.Int("count", len(keys)))

	views := make([]dataKeyView, 0, len(keys))
	for _, key := range keys {
		locator := make([]string, 0, len(key.MasterKey.Locator))
		for _, e := range key.MasterKey.Document()[1:] {
			locator = append(locator, fmt.Sprintf("%s=%v", e.Key, e.Value))
		}
		views = append(views, dataKeyView{
			KeyID:     key.ID.String(),
			AltNames:  key.KeyAltNames,
			Provider:  string(key.MasterKey.Provider),
			MasterKey: strings.Join(locator, ","),
			CreatedAt: key.CreatedAt,
		})
	}

	if format == "json" {
		return writeJSON(out, views)
	}

	if len(views) == 0 {
		_, err := fmt.Fprintln(out, "No data keys found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY ID\tALT NAMES\tPROVIDER\tCREATED AT")
	for _, v := range views {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			v.KeyID,
			strings.Join(v.AltNames, ","),
			v.Provider,
			v.CreatedAt.Format(time.RFC3339),
		)
	}
	return w.Flush()
}
