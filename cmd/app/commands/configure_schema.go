package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaUsecase "github.com/allisson/fieldvault/internal/schema/usecase"
)

// collectionView is the printed form of one collection result.
type collectionView struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

// runView is the printed form of a provisioning run.
type runView struct {
	State       string           `json:"state"`
	KeyID       string           `json:"key_id,omitempty"`
	Collections []collectionView `json:"collections"`
}

// RunConfigureSchema provisions every registry collection and prints the per-collection
// outcome. It returns an error when the run was aborted or any collection failed, so the
// process exits non-zero while the collections that succeeded stay applied.
//
// Requirements: the document store and the KMS must be reachable.
func RunConfigureSchema(
	ctx context.Context,
	driver schemaUsecase.DriverUseCase,
	registry *schemaDomain.Registry,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("configuring schema", slog.Int("collections", len(registry.Entries)))

	report, runErr := driver.Run(ctx, registry)
	if report == nil {
		return fmt.Errorf("failed to configure schema: %w", runErr)
	}

	view := runView{
		State:       report.State.String(),
		Collections: make([]collectionView, 0, len(report.Results)),
	}
	if !report.KeyID.IsZero() {
		view.KeyID = report.KeyID.String()
	}
	for _, result := range report.Results {
		cv := collectionView{
			Name:   result.Name,
			Status: result.Status(),
			Action: result.Action.String(),
		}
		if result.Err != nil {
			cv.Error = result.Err.Error()
		}
		view.Collections = append(view.Collections, cv)
	}

	if err := outputRun(out, view, format); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("failed to configure schema: %w", runErr)
	}
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("failed to configure %d of %d collection(s): %w",
			len(failed), len(report.Results), report.Err())
	}
	return nil
}

func outputRun(out io.Writer, view runView, format string) error {
	if format == "json" {
		return writeJSON(out, view)
	}

	for _, c := range view.Collections {
		line := fmt.Sprintf("%-8s %s (%s)", c.Status, c.Name, c.Action)
		if c.Error != "" {
			line = fmt.Sprintf("%-8s %s: %s", c.Status, c.Name, c.Error)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "Run %s\n", view.State)
	return err
}
