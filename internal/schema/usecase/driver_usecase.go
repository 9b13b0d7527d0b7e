package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaService "github.com/allisson/fieldvault/internal/schema/service"
)

// driverUseCase implements DriverUseCase.
//
// A run validates the registry and every policy, resolves the data key once, compiles
// each valid entry and applies them with at most concurrency collections in flight.
// One failing collection never blocks the others; only a data key failure aborts.
type driverUseCase struct {
	provisioner ProvisionerUseCase
	keys        KeyResolver
	concurrency int
	logger      *slog.Logger
	now         func() time.Time

	mu    sync.Mutex
	state schemaDomain.RunState
}

// NewDriverUseCase creates a new DriverUseCase. A concurrency below 1 is treated as 1.
func NewDriverUseCase(
	provisioner ProvisionerUseCase,
	keys KeyResolver,
	concurrency int,
	logger *slog.Logger,
) DriverUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &driverUseCase{
		provisioner: provisioner,
		keys:        keys,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// State returns the state of the latest run.
func (d *driverUseCase) State() schemaDomain.RunState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// start moves the driver to Running unless a run is already in flight.
func (d *driverUseCase) start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == schemaDomain.RunRunning {
		return schemaDomain.ErrRunInProgress
	}
	d.state = schemaDomain.RunRunning
	return nil
}

func (d *driverUseCase) setState(state schemaDomain.RunState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
}

// Run provisions the whole registry.
func (d *driverUseCase) Run(ctx context.Context, registry *schemaDomain.Registry) (*schemaDomain.Report, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: nil registry", schemaDomain.ErrInvalidRegistry)
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	if err := d.start(); err != nil {
		return nil, err
	}
	report := &schemaDomain.Report{
		State:     schemaDomain.RunRunning,
		StartedAt: d.now().UTC(),
		Results:   make([]schemaDomain.CollectionResult, len(registry.Entries)),
	}
	d.logger.Info("provisioning run started", slog.Int("collections", len(registry.Entries)))

	// Static policy errors fail their own collection before any network call.
	pending := make([]bool, len(registry.Entries))
	var pendingCount int
	for i, entry := range registry.Entries {
		report.Results[i].Name = entry.Name
		if err := schemaService.ValidatePolicy(entry.Policy); err != nil {
			report.Results[i].Err = err
			continue
		}
		pending[i] = true
		pendingCount++
	}

	if pendingCount > 0 {
		keyID, err := d.keys.ResolveKey(ctx)
		if err != nil {
			aborted := fmt.Errorf("%w: %w", schemaDomain.ErrRunAborted, err)
			for i := range pending {
				if pending[i] {
					report.Results[i].Err = aborted
				}
			}
			report.Aborted = aborted
			d.finish(report)
			return report, aborted
		}
		report.KeyID = keyID

		d.applyAll(ctx, registry, pending, report)
	}

	d.finish(report)
	return report, nil
}

func (d *driverUseCase) applyAll(
	ctx context.Context,
	registry *schemaDomain.Registry,
	pending []bool,
	report *schemaDomain.Report,
) {
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, entry := range registry.Entries {
		if !pending[i] {
			continue
		}

		schema, err := schemaService.Compile(entry.Policy, report.KeyID)
		if err != nil {
			report.Results[i].Err = err
			continue
		}

		// Each goroutine writes only its own result slot.
		g.Go(func() error {
			action, err := d.provisioner.Apply(ctx, entry.Name, schema)
			report.Results[i].Action = action
			report.Results[i].Err = err
			return nil
		})
	}

	_ = g.Wait()
}

func (d *driverUseCase) finish(report *schemaDomain.Report) {
	report.FinishedAt = d.now().UTC()
	report.State = schemaDomain.RunCompleted
	if report.Aborted != nil || len(report.Failed()) > 0 {
		report.State = schemaDomain.RunCompletedWithErrors
	}
	d.setState(report.State)

	for _, result := range report.Results {
		if result.Err != nil {
			d.logger.Error("collection provisioning failed",
				slog.String("collection", result.Name),
				slog.Any("error", result.Err),
			)
		}
	}
	d.logger.Info("provisioning run finished",
		slog.String("state", report.State.String()),
		slog.Int("applied", len(report.Applied())),
		slog.Int("unchanged", len(report.Unchanged())),
		slog.Int("failed", len(report.Failed())),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
}
