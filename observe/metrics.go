package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics records access-gate decisions.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: recording is best-effort and must not panic.
type AuthMetrics struct {
	decisions metric.Int64Counter
	denials   metric.Int64Counter
}

// NewAuthMetrics creates auth decision counters on meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	decisions, err := meter.Int64Counter(
		"auth.decisions.total",
		metric.WithDescription("Total number of access gate decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	denials, err := meter.Int64Counter(
		"auth.denials.total",
		metric.WithDescription("Total number of denied requests"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{decisions: decisions, denials: denials}, nil
}

// RecordDecision records one gate decision for path with its reason.
func (m *AuthMetrics) RecordDecision(ctx context.Context, path, reason string, allowed bool) {
	if m == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String("http.path", path),
		attribute.String("auth.reason", reason),
		attribute.Bool("auth.allowed", allowed),
	)
	m.decisions.Add(ctx, 1, opt)
	if !allowed {
		m.denials.Add(ctx, 1, opt)
	}
}

// ToolMetrics records tool call counts and latency.
type ToolMetrics struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewToolMetrics creates tool call instruments on meter.
func NewToolMetrics(meter metric.Meter) (*ToolMetrics, error) {
	calls, err := meter.Int64Counter(
		"tool.calls.total",
		metric.WithDescription("Total number of tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errCount, err := meter.Int64Counter(
		"tool.calls.errors",
		metric.WithDescription("Total number of failed tool calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"tool.calls.duration_ms",
		metric.WithDescription("Tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolMetrics{calls: calls, errors: errCount, duration: duration}, nil
}

// RecordCall records one tool call with its duration and error status.
func (m *ToolMetrics) RecordCall(ctx context.Context, tool string, d time.Duration, err error) {
	if m == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("tool.name", tool))
	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(d.Milliseconds()), opt)
}
