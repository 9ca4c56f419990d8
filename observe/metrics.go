package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; recording is best-effort.
type Metrics interface {
	// RecordLookup records one pre-check with its hit/miss outcome.
	RecordLookup(ctx context.Context, toolName string, hit bool)

	// RecordStore records one post-store attempt. Reason is the skip
	// reason when stored is false, empty otherwise.
	RecordStore(ctx context.Context, toolName string, stored bool, reason string)

	// RecordEvictions records entries removed by an eviction sweep.
	RecordEvictions(ctx context.Context, count int64)
}

// metricsImpl is the OpenTelemetry-backed implementation.
type metricsImpl struct {
	lookups   metric.Int64Counter
	stores    metric.Int64Counter
	evictions metric.Int64Counter
}

// NewMetrics creates Metrics instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookups, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Total number of cache pre-checks"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	stores, err := meter.Int64Counter(
		"cache.stores",
		metric.WithDescription("Total number of cache post-store attempts"),
		metric.WithUnit("{store}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Total number of entries removed by eviction"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{lookups: lookups, stores: stores, evictions: evictions}, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, toolName string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.String("cache.outcome", outcome),
	))
}

func (m *metricsImpl) RecordStore(ctx context.Context, toolName string, stored bool, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.name", toolName),
		attribute.Bool("cache.stored", stored),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String("cache.skip_reason", reason))
	}
	m.stores.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordEvictions(ctx context.Context, count int64) {
	m.evictions.Add(ctx, count)
}

// nopMetrics records nothing.
type nopMetrics struct{}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordLookup(ctx context.Context, toolName string, hit bool)                 {}
func (nopMetrics) RecordStore(ctx context.Context, toolName string, stored bool, reason string) {}
func (nopMetrics) RecordEvictions(ctx context.Context, count int64)                            {}

// Ensure both implementations satisfy Metrics
var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = nopMetrics{}
)
