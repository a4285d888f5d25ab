package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("newsflash")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEmitSpan starts a span covering one Emit call.
	StartEmitSpan(ctx context.Context, topic string, joint bool) (context.Context, trace.Span)

	// StartJointSpan starts a span for a joint publication triggered by a
	// member. It is a child of the member's emit span.
	StartJointSpan(ctx context.Context, topic, lastMember string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartEmitSpan(ctx context.Context, topic string, joint bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, "newsflash.emit",
		trace.WithAttributes(
			attribute.String("topic", topic),
			attribute.Bool("joint", joint),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) StartJointSpan(ctx context.Context, topic, lastMember string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "newsflash.joint",
		trace.WithAttributes(
			attribute.String("topic", topic),
			attribute.String("last_member", lastMember),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
