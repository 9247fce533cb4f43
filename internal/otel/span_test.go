package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	resultCtx, span := StartSpan(context.Background(), nil, "registration.pass")

	require.NotNil(t, resultCtx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_NilTracerKeepsParent(t *testing.T) {
	t.Parallel()

	_, tp := newTestTracerProvider(t)
	ctx, parent := tp.Tracer("test").Start(context.Background(), "registration.run")
	defer parent.End()

	_, span := StartSpan(ctx, nil, "registration.pass")
	assert.Equal(t, parent.SpanContext(), span.SpanContext())
}

func TestStartSpan_ValidTracer(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	_, span := StartSpan(context.Background(), tp.Tracer("test"), "registration.run",
		trace.WithAttributes(
			AttrServerTemplate.String("kie"),
			AttrDefinitions.Int(3),
		),
	)
	require.True(t, span.SpanContext().IsValid())
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "registration.run", spans[0].Name)

	attrs := make(map[string]any)
	for _, attr := range spans[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "kie", attrs["registration.server_template"])
	assert.Equal(t, int64(3), attrs["registration.definitions"])
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		description string
		wantDesc    string
		wantEvents  int
	}{
		{
			name:        "error with description",
			err:         errors.New("HTTP 503 from http://kie-1:8080: deployment in progress"),
			description: "budget exhausted",
			wantDesc:    "budget exhausted",
			wantEvents:  1,
		},
		{
			name:       "generic description",
			err:        errors.New("boom"),
			wantDesc:   "operation failed",
			wantEvents: 1,
		},
		{
			name:        "no error",
			description: "aborted",
			wantDesc:    "aborted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			_, span := tp.Tracer("test").Start(context.Background(), "op")
			RecordError(span, tt.err, tt.description)
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status.Code)
			assert.Equal(t, tt.wantDesc, spans[0].Status.Description)
			assert.Len(t, spans[0].Events, tt.wantEvents)
		})
	}
}

func TestRecordError_NilSpan(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { RecordError(nil, errors.New("boom"), "") })
}
