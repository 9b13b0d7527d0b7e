package usecase

import (
	"context"
	"time"

	"github.com/allisson/fieldvault/internal/metrics"
	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
)

func recordOperation(
	ctx context.Context,
	m metrics.BusinessMetrics,
	operation string,
	start time.Time,
	err error,
) {
	m.Observe(ctx, metrics.DomainSchema, operation, time.Since(start), err)
}

// provisionerUseCaseWithMetrics decorates ProvisionerUseCase with metrics instrumentation.
type provisionerUseCaseWithMetrics struct {
	next    ProvisionerUseCase
	metrics metrics.BusinessMetrics
}

// NewProvisionerUseCaseWithMetrics wraps a ProvisionerUseCase with metrics recording.
func NewProvisionerUseCaseWithMetrics(useCase ProvisionerUseCase, m metrics.BusinessMetrics) ProvisionerUseCase {
	return &provisionerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Apply records metrics for collection apply operations. The operation name carries the
// action taken so created, altered and unchanged applies are counted separately.
func (p *provisionerUseCaseWithMetrics) Apply(
	ctx context.Context,
	name string,
	schema *schemaDomain.CompiledSchema,
) (schemaDomain.ProvisionAction, error) {
	start := time.Now()
	action, err := p.next.Apply(ctx, name, schema)
	recordOperation(ctx, p.metrics, "collection_apply_"+action.String(), start, err)
	return action, err
}

// ExistingCollections records metrics for collection inspection.
func (p *provisionerUseCaseWithMetrics) ExistingCollections(ctx context.Context, names []string) ([]string, error) {
	start := time.Now()
	existing, err := p.next.ExistingCollections(ctx, names)
	recordOperation(ctx, p.metrics, "collection_inspect", start, err)
	return existing, err
}

// DropCollections records metrics for collection drops.
func (p *provisionerUseCaseWithMetrics) DropCollections(
	ctx context.Context,
	input *schemaDomain.DropCollectionsInput,
) ([]string, error) {
	start := time.Now()
	dropped, err := p.next.DropCollections(ctx, input)
	recordOperation(ctx, p.metrics, "collection_drop", start, err)
	return dropped, err
}

// driverUseCaseWithMetrics decorates DriverUseCase with metrics instrumentation.
type driverUseCaseWithMetrics struct {
	next    DriverUseCase
	metrics metrics.BusinessMetrics
}

// NewDriverUseCaseWithMetrics wraps a DriverUseCase with metrics recording.
func NewDriverUseCaseWithMetrics(useCase DriverUseCase, m metrics.BusinessMetrics) DriverUseCase {
	return &driverUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Run records metrics for provisioning runs. A run that completes with per-collection
// failures is recorded as an error.
func (d *driverUseCaseWithMetrics) Run(
	ctx context.Context,
	registry *schemaDomain.Registry,
) (*schemaDomain.Report, error) {
	start := time.Now()
	report, err := d.next.Run(ctx, registry)

	recordErr := err
	if recordErr == nil && report != nil {
		recordErr = report.Err()
	}
	recordOperation(ctx, d.metrics, "provision_run", start, recordErr)
	return report, err
}

// State passes through to the decorated use case.
func (d *driverUseCaseWithMetrics) State() schemaDomain.RunState {
	return d.next.State()
}
