// Package usecase implements schema provisioning: applying compiled validators to
// collections and driving a whole registry through compile and apply.
//
// # Create vs. alter
//
// A missing collection is created with the validator installed. An existing collection
// gets its validator replaced through collMod, never dropped and recreated, so stored
// documents are preserved. Existing documents are not re-encrypted: the new validator
// applies to subsequent writes only.
//
// # Conflicts
//
// When the live validator binds an encrypted field to a different data key than the
// desired schema, Apply fails with ErrProvisionConflict instead of overwriting it.
//
// # Usage Example
//
//	provisioner := usecase.NewProvisionerUseCase(collectionRepo, logger)
//	driver := usecase.NewDriverUseCase(provisioner, keyResolver, 4, logger)
//	report, err := driver.Run(ctx, registry)
package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
)

// provisionerUseCase implements ProvisionerUseCase.
type provisionerUseCase struct {
	repo   CollectionRepository
	logger *slog.Logger
}

// NewProvisionerUseCase creates a new ProvisionerUseCase.
func NewProvisionerUseCase(repo CollectionRepository, logger *slog.Logger) ProvisionerUseCase {
	return &provisionerUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Apply converges the collection's validator to schema.
func (p *provisionerUseCase) Apply(
	ctx context.Context,
	name string,
	schema *schemaDomain.CompiledSchema,
) (schemaDomain.ProvisionAction, error) {
	if err := schemaDomain.ValidateCollectionName(name); err != nil {
		return schemaDomain.ActionNone, err
	}

	desired, err := schema.Bytes()
	if err != nil {
		return schemaDomain.ActionNone, fmt.Errorf("failed to encode schema: %w", err)
	}

	state, err := p.repo.Inspect(ctx, name)
	if err != nil {
		return schemaDomain.ActionNone, err
	}

	if !state.Exists {
		err := p.repo.Create(ctx, name, schema.Validator())
		if err == nil {
			p.logger.Info("collection created", slog.String("collection", name))
			return schemaDomain.ActionCreated, nil
		}
		if !errors.Is(err, schemaDomain.ErrCollectionExists) {
			return schemaDomain.ActionNone, err
		}

		p.logger.Info("collection created concurrently, updating its validator instead",
			slog.String("collection", name),
		)
		state, err = p.repo.Inspect(ctx, name)
		if err != nil {
			return schemaDomain.ActionNone, err
		}
	}

	if bytes.Equal(state.Schema, desired) {
		p.logger.Debug("validator already up to date", slog.String("collection", name))
		return schemaDomain.ActionUnchanged, nil
	}

	if state.Schema != nil {
		if err := checkBindings(state.Schema, schema); err != nil {
			return schemaDomain.ActionNone, err
		}
	}

	if err := p.repo.UpdateValidator(ctx, name, schema.Validator()); err != nil {
		return schemaDomain.ActionNone, err
	}

	p.logger.Info("collection validator updated", slog.String("collection", name))
	return schemaDomain.ActionAltered, nil
}

// ExistingCollections filters names down to the collections present in the database.
func (p *provisionerUseCase) ExistingCollections(ctx context.Context, names []string) ([]string, error) {
	var existing []string
	for _, name := range names {
		state, err := p.repo.Inspect(ctx, name)
		if err != nil {
			return nil, err
		}
		if state.Exists {
			existing = append(existing, name)
		}
	}
	return existing, nil
}

// DropCollections drops every listed collection once the database name is confirmed.
func (p *provisionerUseCase) DropCollections(
	ctx context.Context,
	input *schemaDomain.DropCollectionsInput,
) ([]string, error) {
	database := p.repo.Database()
	if input == nil || input.Confirm != database {
		return nil, fmt.Errorf("%w: confirm with the database name %q", schemaDomain.ErrDropNotConfirmed, database)
	}

	dropped := make([]string, 0, len(input.Collections))
	for _, name := range input.Collections {
		if err := p.repo.Drop(ctx, name); err != nil {
			return dropped, err
		}
		dropped = append(dropped, name)
		p.logger.Warn("encrypted collection dropped",
			slog.String("database", database),
			slog.String("collection", name),
		)
	}
	return dropped, nil
}

func checkBindings(live []byte, schema *schemaDomain.CompiledSchema) error {
	liveBindings, err := schemaDomain.KeyBindings(live)
	if err != nil {
		return fmt.Errorf("%w: unreadable live validator: %v", schemaDomain.ErrProvisionConflict, err)
	}
	desiredBindings, err := schema.KeyBindings()
	if err != nil {
		return fmt.Errorf("failed to read desired key bindings: %w", err)
	}

	if conflicts := schemaDomain.BindingConflicts(liveBindings, desiredBindings); len(conflicts) > 0 {
		return fmt.Errorf("%w: fields %v are bound to a different data key", schemaDomain.ErrProvisionConflict, conflicts)
	}
	return nil
}
