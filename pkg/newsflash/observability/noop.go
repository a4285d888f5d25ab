package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordEmit does nothing.
func (NoopMetrics) RecordEmit(_ context.Context, _ string, _ int, _ time.Duration, _ error) {}

// RecordHandler does nothing.
func (NoopMetrics) RecordHandler(_ context.Context, _ string, _ error) {}

// RecordJointFire does nothing.
func (NoopMetrics) RecordJointFire(_ context.Context, _ string) {}

// RecordSubscription does nothing.
func (NoopMetrics) RecordSubscription(_ context.Context, _ string, _ int64) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartEmitSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartEmitSpan(ctx context.Context, _ string, _ bool) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartJointSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartJointSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}
