package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Config holds telemetry configuration for the server.
type Config struct {
	// ServiceName identifies the service in exported telemetry.
	ServiceName string

	// Version is the service version attached to the resource.
	Version string

	// TraceExporter selects the span exporter: otlp|stdout|none.
	TraceExporter string

	// MetricExporter selects the metrics exporter: otlp|prometheus|stdout|none.
	MetricExporter string

	// SamplePct is the trace sampling ratio, 0.0-1.0.
	SamplePct float64

	// LogLevel is the structured logger level: debug|info|warn|error.
	LogLevel string
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("observe: service name is required")
	}
	switch c.TraceExporter {
	case "otlp", "stdout", "none", "":
	default:
		return fmt.Errorf("observe: unknown trace exporter: %q", c.TraceExporter)
	}
	switch c.MetricExporter {
	case "otlp", "prometheus", "stdout", "none", "":
	default:
		return fmt.Errorf("observe: unknown metric exporter: %q", c.MetricExporter)
	}
	if c.SamplePct < 0 || c.SamplePct > 1.0 {
		return fmt.Errorf("observe: sample percentage must be between 0.0 and 1.0, got %f", c.SamplePct)
	}
	return nil
}

// Telemetry bundles the tracer, meter, and logger for the process.
//
// Contract:
// - Concurrency: safe for concurrent use after construction.
// - Shutdown: idempotent; returns the first error encountered.
type Telemetry struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// New builds telemetry from cfg. Exporters set to "none" or left empty
// produce no-op providers, so callers can always wire metrics and
// spans unconditionally.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{logger: NewLogger(cfg.LogLevel)}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: create resource: %w", err)
	}

	if cfg.TraceExporter != "" && cfg.TraceExporter != "none" {
		exporter, err := newTraceExporter(ctx, cfg.TraceExporter)
		if err != nil {
			return nil, fmt.Errorf("observe: setup tracing: %w", err)
		}

		var sampler sdktrace.Sampler
		switch {
		case cfg.SamplePct >= 1.0:
			sampler = sdktrace.AlwaysSample()
		case cfg.SamplePct <= 0:
			sampler = sdktrace.NeverSample()
		default:
			sampler = sdktrace.TraceIDRatioBased(cfg.SamplePct)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
			sdktrace.WithBatcher(exporter),
		)
		otel.SetTracerProvider(tp)
		t.tracerProvider = tp
		t.tracer = tp.Tracer(cfg.ServiceName)
	} else {
		t.tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}

	if cfg.MetricExporter != "" && cfg.MetricExporter != "none" {
		reader, err := newMetricReader(ctx, cfg.MetricExporter)
		if err != nil {
			return nil, fmt.Errorf("observe: setup metrics: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		otel.SetMeterProvider(mp)
		t.meterProvider = mp
		t.meter = mp.Meter(cfg.ServiceName)
	} else {
		t.meter = metricnoop.NewMeterProvider().Meter("noop")
	}

	return t, nil
}

// Tracer returns the configured tracer.
func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

// Meter returns the configured meter.
func (t *Telemetry) Meter() metric.Meter { return t.meter }

// Logger returns the configured logger.
func (t *Telemetry) Logger() Logger { return t.logger }

// Shutdown flushes and stops the telemetry providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
