// Package otel provides OpenTelemetry instrumentation helpers for registration runs.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by registration spans
const (
	AttrRunID          = attribute.Key("registration.run_id")
	AttrServerInstance = attribute.Key("registration.server_instance")
	AttrServerTemplate = attribute.Key("registration.server_template")
	AttrDefinitions    = attribute.Key("registration.definitions")
	AttrOutcome        = attribute.Key("registration.outcome")
	AttrPass           = attribute.Key("registration.pass")
	AttrPasses         = attribute.Key("registration.passes")
	AttrRemaining      = attribute.Key("registration.remaining")
	AttrEndpoint       = attribute.Key("registration.endpoint")
)

// StartSpan starts a span when tracer is set and otherwise hands back the span already in ctx
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed with a short description and attaches err as an event.
// The description stays generic; endpoint replies can carry arbitrary text.
func RecordError(span trace.Span, err error, description string) {
	if span == nil {
		return
	}
	if description == "" {
		description = "operation failed"
	}
	span.SetStatus(codes.Error, description)
	if err != nil {
		span.RecordError(err)
	}
}
