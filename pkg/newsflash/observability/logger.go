// Package observability provides logging, metrics, and tracing hooks for the
// newsflash bus.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogSubscribe logs a new subscription.
func LogSubscribe(logger *slog.Logger, topic, subscriptionID string, once, joint bool) {
	if logger == nil {
		return
	}
	logger.Debug("subscribed",
		slog.String("topic", topic),
		slog.String("subscription_id", subscriptionID),
		slog.Bool("once", once),
		slog.Bool("joint", joint),
	)
}

// LogUnsubscribe logs a subscription removal. removed is false when the id
// was not registered under the topic.
func LogUnsubscribe(logger *slog.Logger, topic, subscriptionID string, removed bool) {
	if logger == nil {
		return
	}
	logger.Debug("unsubscribed",
		slog.String("topic", topic),
		slog.String("subscription_id", subscriptionID),
		slog.Bool("removed", removed),
	)
}

// LogJointInstalled logs the installation of a member listener for joint events.
func LogJointInstalled(logger *slog.Logger, member, jointTopic string) {
	if logger == nil {
		return
	}
	logger.Debug("joint member listener installed",
		slog.String("member", member),
		slog.String("joint_topic", jointTopic),
	)
}

// LogEmit logs a completed emit.
func LogEmit(logger *slog.Logger, topic string, handlers int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("emitted",
		slog.String("topic", topic),
		slog.Int("handlers", handlers),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEmitError logs an emit that returned an error.
func LogEmitError(logger *slog.Logger, topic string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("emit failed",
		slog.String("topic", topic),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogJointFire logs a joint publication triggered by its last member.
func LogJointFire(logger *slog.Logger, jointTopic, lastMember string, handlers int) {
	if logger == nil {
		return
	}
	logger.Info("joint event fired",
		slog.String("topic", jointTopic),
		slog.String("last_member", lastMember),
		slog.Int("handlers", handlers),
	)
}

// LogHandlerError logs a failing handler. The error is still returned to the
// caller of Emit according to the dispatch policy.
func LogHandlerError(logger *slog.Logger, topic, subscriptionID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("handler failed",
		slog.String("topic", topic),
		slog.String("subscription_id", subscriptionID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... dispatch ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

// Milliseconds converts a duration to fractional milliseconds for log fields.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
