package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// KMSMetrics records round-trips to the external key management service.
type KMSMetrics interface {
	// RecordRequest records one wrap or unwrap call against provider.
	RecordRequest(ctx context.Context, provider, operation string, duration time.Duration, err error)
}

// kmsMetrics holds KMS-specific metric instruments.
type kmsMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
}

// NewKMSMetrics creates KMS request instruments on the given meter provider.
// Tracks total requests and request durations with provider, operation, and status labels.
func NewKMSMetrics(meterProvider metric.MeterProvider, namespace string) (KMSMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_kms_requests_total", namespace),
		metric.WithDescription("Total number of KMS requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kms request counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_kms_request_duration_seconds", namespace),
		metric.WithDescription("KMS request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kms duration histogram: %w", err)
	}

	return &kmsMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
	}, nil
}

// RecordRequest increments the request counter and records the request duration.
func (k *kmsMetrics) RecordRequest(
	ctx context.Context,
	provider, operation string,
	duration time.Duration,
	err error,
) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", sanitizeProvider(provider)),
		attribute.String("operation", operation),
		attribute.String("status", StatusOf(err)),
	}

	k.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	k.durationHisto.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// NoOpKMSMetrics is a no-op implementation of KMSMetrics for when metrics are disabled.
type NoOpKMSMetrics struct{}

// RecordRequest does nothing when metrics are disabled.
func (NoOpKMSMetrics) RecordRequest(context.Context, string, string, time.Duration, error) {}

// sanitizeProvider keeps the provider label bounded. An empty provider is reported as "unknown".
func sanitizeProvider(provider string) string {
	if provider == "" {
		return "unknown"
	}
	return provider
}
