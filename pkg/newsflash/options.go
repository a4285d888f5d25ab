package newsflash

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/newsflash/pkg/newsflash/observability"
)

// DispatchPolicy decides what a failing handler does to the rest of an Emit.
type DispatchPolicy int

const (
	// AbortOnError stops dispatch at the first failing handler and returns
	// its error from Emit. Handlers later in the snapshot do not run.
	AbortOnError DispatchPolicy = iota

	// ContinueOnError runs every handler and returns all failures joined
	// with errors.Join.
	ContinueOnError
)

// String returns the policy name used in configuration.
func (p DispatchPolicy) String() string {
	switch p {
	case AbortOnError:
		return "abort"
	case ContinueOnError:
		return "continue"
	default:
		return "unknown"
	}
}

// ParseDispatchPolicy parses "abort" or "continue".
func ParseDispatchPolicy(s string) (DispatchPolicy, error) {
	switch strings.ToLower(s) {
	case "abort":
		return AbortOnError, nil
	case "continue":
		return ContinueOnError, nil
	default:
		return 0, fmt.Errorf("unknown dispatch policy %q", s)
	}
}

// busConfig holds the configuration applied by Options.
type busConfig struct {
	ids           IDGenerator
	policy        DispatchPolicy
	recoverPanics bool

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

func defaultBusConfig() busConfig {
	return busConfig{
		ids:     NewCounterGenerator(),
		policy:  AbortOnError,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Bus.
type Option func(*busConfig)

// WithIDGenerator sets how subscription ids are generated.
// Default: a CounterGenerator owned by the bus.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *busConfig) {
		if g != nil {
			c.ids = g
		}
	}
}

// WithDispatchPolicy sets how handler failures affect dispatch.
// Default: AbortOnError
func WithDispatchPolicy(p DispatchPolicy) Option {
	return func(c *busConfig) {
		c.policy = p
	}
}

// WithRecover converts handler panics into *PanicError values, which then
// follow the dispatch policy. Default: false (panics propagate to the caller
// of Emit).
func WithRecover(enabled bool) Option {
	return func(c *busConfig) {
		c.recoverPanics = enabled
	}
}

// WithLogger enables structured logging of subscriptions, emits, joint
// fires, and handler failures. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *busConfig) {
		c.logger = logger
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Uses the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *busConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *busConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables or disables OpenTelemetry spans.
// Uses the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *busConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *busConfig) {
		if s != nil {
			c.spans = s
		}
	}
}
