package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Config holds telemetry configuration.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|stdout|none
	SamplePct float64 // 0.0-1.0
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

var validTraceExporters = map[string]bool{
	"otlp": true, "stdout": true, "none": true, "": true,
}

var validMetricExporters = map[string]bool{
	"otlp": true, "prometheus": true, "stdout": true, "none": true, "": true,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("observe: service name is required")
	}
	if c.Tracing.Enabled {
		if !validTraceExporters[c.Tracing.Exporter] {
			return fmt.Errorf("observe: unknown trace exporter: %q", c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1.0 {
			return fmt.Errorf("observe: sample percentage must be between 0.0 and 1.0, got: %f", c.Tracing.SamplePct)
		}
	}
	if c.Metrics.Enabled && !validMetricExporters[c.Metrics.Exporter] {
		return fmt.Errorf("observe: unknown metrics exporter: %q", c.Metrics.Exporter)
	}
	if c.Logging.Enabled && !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("observe: unknown log level: %q", c.Logging.Level)
	}
	return nil
}

// Telemetry bundles the logger, metrics and tracer handed to the cache.
// Disabled subsystems are no-ops, so callers never nil-check.
type Telemetry struct {
	Logger  Logger
	Metrics Metrics

	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Setup builds a Telemetry bundle from the validated configuration.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{
		Logger:  NopLogger(),
		Metrics: NopMetrics(),
		tracer:  tracenoop.NewTracerProvider().Tracer("noop"),
	}

	if cfg.Logging.Enabled {
		t.Logger = NewLogger(cfg.Logging.Level)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: failed to create resource: %w", err)
	}

	if cfg.Tracing.Enabled {
		exporter, err := newTraceExporter(ctx, cfg.Tracing.Exporter)
		if err != nil {
			return nil, fmt.Errorf("observe: failed to setup tracing: %w", err)
		}

		var sampler sdktrace.Sampler
		switch {
		case cfg.Tracing.SamplePct >= 1.0:
			sampler = sdktrace.AlwaysSample()
		case cfg.Tracing.SamplePct <= 0:
			sampler = sdktrace.NeverSample()
		default:
			sampler = sdktrace.TraceIDRatioBased(cfg.Tracing.SamplePct)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		}
		if exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter))
		}
		t.tracerProvider = sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(t.tracerProvider)
		t.tracer = t.tracerProvider.Tracer(cfg.ServiceName)
	}

	if cfg.Metrics.Enabled {
		reader, err := newMetricReader(ctx, cfg.Metrics.Exporter)
		if err != nil {
			return nil, fmt.Errorf("observe: failed to setup metrics: %w", err)
		}

		opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
		if reader != nil {
			opts = append(opts, sdkmetric.WithReader(reader))
		}
		t.meterProvider = sdkmetric.NewMeterProvider(opts...)
		otel.SetMeterProvider(t.meterProvider)

		m, err := NewMetrics(t.meterProvider.Meter(cfg.ServiceName))
		if err != nil {
			return nil, fmt.Errorf("observe: failed to create metrics: %w", err)
		}
		t.Metrics = m
	} else {
		m, err := NewMetrics(metricnoop.NewMeterProvider().Meter("noop"))
		if err != nil {
			return nil, err
		}
		t.Metrics = m
	}

	return t, nil
}

// StartOp starts a span for one cache operation ("precheck" or "poststore")
// against the named tool.
func (t *Telemetry) StartOp(ctx context.Context, op, toolName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "cache."+op,
		trace.WithAttributes(
			attribute.String("cache.op", op),
			attribute.String("tool.name", toolName),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndOp ends the span, recording the error status if present.
func (t *Telemetry) EndOp(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and stops the telemetry providers. Idempotent; returns
// the joined errors.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		t.tracerProvider = nil
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		t.meterProvider = nil
	}
	return errors.Join(errs...)
}
