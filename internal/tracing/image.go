package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartFlowSpan opens a span for one orchestrator flow ("resize", "edit",
// "preview").
func StartFlowSpan(ctx context.Context, flow string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "resizer."+flow, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("resizer.flow", flow))
	span.SetAttributes(attrs...)
	return ctx, span
}

// StartItemSpan opens a child span for a single image inside a flow.
func StartItemSpan(ctx context.Context, name string, index int) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "resizer.item")
	span.SetAttributes(
		attribute.String("image.name", name),
		attribute.Int("image.index", index),
	)
	return ctx, span
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
