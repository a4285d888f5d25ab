package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records bus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmit records a completed Emit with the number of handlers invoked.
	RecordEmit(ctx context.Context, topic string, handlers int, duration time.Duration, err error)

	// RecordHandler records a single handler invocation.
	RecordHandler(ctx context.Context, topic string, err error)

	// RecordJointFire records a joint publication triggered by its members.
	RecordJointFire(ctx context.Context, topic string)

	// RecordSubscription records a subscription change; delta is +1 or -1.
	RecordSubscription(ctx context.Context, topic string, delta int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	emits         metric.Int64Counter
	emitLatency   metric.Float64Histogram
	invocations   metric.Int64Counter
	handlerErrors metric.Int64Counter
	jointFires    metric.Int64Counter
	subscriptions metric.Int64UpDownCounter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily creates the instruments on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("newsflash")

	emits, err := meter.Int64Counter("newsflash.emits",
		metric.WithDescription("Number of Emit calls"),
	)
	if err != nil {
		return nil, err
	}

	emitLatency, err := meter.Float64Histogram("newsflash.emit.latency_ms",
		metric.WithDescription("Emit latency including all handlers, in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	invocations, err := meter.Int64Counter("newsflash.handler.invocations",
		metric.WithDescription("Number of handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("newsflash.handler.errors",
		metric.WithDescription("Number of handler invocations that failed"),
	)
	if err != nil {
		return nil, err
	}

	jointFires, err := meter.Int64Counter("newsflash.joint.fires",
		metric.WithDescription("Number of joint events fired by member completion"),
	)
	if err != nil {
		return nil, err
	}

	subscriptions, err := meter.Int64UpDownCounter("newsflash.subscriptions",
		metric.WithDescription("Number of active subscriptions"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		emits:         emits,
		emitLatency:   emitLatency,
		invocations:   invocations,
		handlerErrors: handlerErrors,
		jointFires:    jointFires,
		subscriptions: subscriptions,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordEmit(ctx context.Context, topic string, handlers int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.Bool("success", err == nil),
	)
	m.emits.Add(ctx, 1, attrs)
	m.emitLatency.Record(ctx, Milliseconds(duration), attrs)
}

func (m *otelMetrics) RecordHandler(ctx context.Context, topic string, err error) {
	attrs := metric.WithAttributes(attribute.String("topic", topic))
	m.invocations.Add(ctx, 1, attrs)
	if err != nil {
		m.handlerErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordJointFire(ctx context.Context, topic string) {
	m.jointFires.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *otelMetrics) RecordSubscription(ctx context.Context, topic string, delta int64) {
	m.subscriptions.Add(ctx, delta, metric.WithAttributes(attribute.String("topic", topic)))
}
