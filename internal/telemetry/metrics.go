// Package telemetry provides OpenTelemetry instrumentation for the registrar.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// RegistrationMetricsMeterName is the name used for the registration metrics meter
	RegistrationMetricsMeterName = "github.com/stacklok/dataset-registrar/registration"

	// EndpointMetricsMeterName is the name used for the endpoint health metrics meter
	EndpointMetricsMeterName = "github.com/stacklok/dataset-registrar/endpoint"
)

// RegistrationMetrics holds the OpenTelemetry instruments for registration runs
type RegistrationMetrics struct {
	runDuration metric.Float64Histogram
	attempts    metric.Int64Counter
	registered  metric.Int64Counter
	activeRuns  metric.Int64UpDownCounter
}

// NewRegistrationMetrics creates a new RegistrationMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewRegistrationMetrics(provider metric.MeterProvider) (*RegistrationMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(RegistrationMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"dsr_registration_run_duration_seconds",
		metric.WithDescription("Duration of registration runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	attempts, err := meter.Int64Counter(
		"dsr_registration_attempts_total",
		metric.WithDescription("Number of definition registration attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	registered, err := meter.Int64Counter(
		"dsr_registration_definitions_registered_total",
		metric.WithDescription("Number of definitions confirmed by a server instance"),
		metric.WithUnit("{definition}"),
	)
	if err != nil {
		return nil, err
	}

	activeRuns, err := meter.Int64UpDownCounter(
		"dsr_registration_active_runs",
		metric.WithDescription("Number of registration runs in progress"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	return &RegistrationMetrics{
		runDuration: runDuration,
		attempts:    attempts,
		registered:  registered,
		activeRuns:  activeRuns,
	}, nil
}

// RecordRunStarted counts a run as in progress
func (m *RegistrationMetrics) RecordRunStarted(ctx context.Context, templateID string) {
	if m == nil || m.activeRuns == nil {
		return
	}
	m.activeRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("server_template", templateID)))
}

// RecordRunFinished records the duration and outcome of a run and stops counting it as in progress
func (m *RegistrationMetrics) RecordRunFinished(ctx context.Context, templateID string, duration time.Duration, outcome string) {
	if m == nil || m.runDuration == nil {
		return
	}

	m.activeRuns.Add(ctx, -1, metric.WithAttributes(attribute.String("server_template", templateID)))

	attrs := []attribute.KeyValue{
		attribute.String("server_template", templateID),
		attribute.String("outcome", outcome),
	}
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAttempt counts one registration attempt of a single definition
func (m *RegistrationMetrics) RecordAttempt(ctx context.Context, templateID string, success bool) {
	if m == nil || m.attempts == nil {
		return
	}

	result := "success"
	if !success {
		result = "failure"
	}
	attrs := []attribute.KeyValue{
		attribute.String("server_template", templateID),
		attribute.String("result", result),
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attrs...))
	if success {
		m.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("server_template", templateID)))
	}
}

// EndpointMetrics holds the OpenTelemetry instruments for endpoint health
type EndpointMetrics struct {
	bans     metric.Int64Counter
	rechecks metric.Int64Counter
}

// NewEndpointMetrics creates a new EndpointMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewEndpointMetrics(provider metric.MeterProvider) (*EndpointMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(EndpointMetricsMeterName)

	bans, err := meter.Int64Counter(
		"dsr_endpoint_bans_total",
		metric.WithDescription("Number of times an endpoint was banned after a communication error"),
		metric.WithUnit("{ban}"),
	)
	if err != nil {
		return nil, err
	}

	rechecks, err := meter.Int64Counter(
		"dsr_endpoint_rechecks_total",
		metric.WithDescription("Number of probes of banned endpoints"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	return &EndpointMetrics{bans: bans, rechecks: rechecks}, nil
}

// RecordBan counts an endpoint becoming banned
func (m *EndpointMetrics) RecordBan(ctx context.Context, templateID, endpointURL string) {
	if m == nil || m.bans == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("server_template", templateID),
		attribute.String("endpoint", endpointURL),
	}
	m.bans.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRecheck counts a probe of a banned endpoint
func (m *EndpointMetrics) RecordRecheck(ctx context.Context, templateID, endpointURL string, recovered bool) {
	if m == nil || m.rechecks == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("server_template", templateID),
		attribute.String("endpoint", endpointURL),
		attribute.Bool("recovered", recovered),
	}
	m.rechecks.Add(ctx, 1, metric.WithAttributes(attrs...))
}
