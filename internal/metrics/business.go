package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// Domains label which use case layer an operation belongs to.
const (
	DomainVault  = "vault"
	DomainSchema = "schema"
)

// Outcome labels. Failures are classified by the application error kind so a dashboard
// can tell a refused confirmation apart from an unreachable KMS.
const (
	StatusSuccess      = "success"
	StatusInvalidInput = "invalid_input"
	StatusNotFound     = "not_found"
	StatusConflict     = "conflict"
	StatusUnavailable  = "unavailable"
	StatusError        = "error"
)

// StatusOf maps an operation result to its status label.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return StatusInvalidInput
	case apperrors.Is(err, apperrors.ErrNotFound):
		return StatusNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return StatusConflict
	case apperrors.Is(err, apperrors.ErrUnavailable):
		return StatusUnavailable
	default:
		return StatusError
	}
}

// BusinessMetrics records the outcome of vault and schema use case calls.
type BusinessMetrics interface {
	// Observe records one finished operation (e.g., domain "schema", operation
	// "collection_apply_created"). The counter and the duration histogram share labels.
	Observe(ctx context.Context, domain, operation string, duration time.Duration, err error)
}

// operationMetrics is the OpenTelemetry-backed BusinessMetrics.
type operationMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics registers the operation instruments on meterProvider. Metric names
// are prefixed with namespace (e.g., "fieldvault_operations_total").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Vault and schema operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Vault and schema operation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &operationMetrics{operations: operations, durations: durations}, nil
}

func (o *operationMetrics) Observe(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	err error,
) {
	attrs := metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", StatusOf(err)),
	)
	o.operations.Add(ctx, 1, attrs)
	o.durations.Record(ctx, duration.Seconds(), attrs)
}

// NoOpBusinessMetrics discards every observation. Used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics returns a BusinessMetrics that records nothing.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// Observe does nothing.
func (*NoOpBusinessMetrics) Observe(context.Context, string, string, time.Duration, error) {}
