package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/otel"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/status"
	"github.com/stacklok/dataset-registrar/internal/telemetry"
)

const (
	// DefaultTotalBudget is the default wall-clock budget of a run
	DefaultTotalBudget = 5 * time.Minute

	// DefaultBackoffInterval is the default pause between two passes
	DefaultBackoffInterval = 500 * time.Millisecond
)

// ErrUnexpectedDefect marks failures outside the retryable error classes
var ErrUnexpectedDefect = errors.New("unexpected defect")

// Publisher delivers the completion event of a run
type Publisher interface {
	Publish(ctx context.Context, event events.DataSetRegistered) int
}

// Runner executes one registration run
//
//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/stacklok/dataset-registrar/internal/registration Runner
type Runner interface {
	Run(ctx context.Context, templateID, instanceID string, ws *WorkingSet) Outcome
}

// Synchronizer drains working sets against the endpoints of a server template
type Synchronizer struct {
	resolver  endpoint.Resolver
	publisher Publisher

	totalBudget     time.Duration
	backoffInterval time.Duration

	stateSvc state.RunStateService
	metrics  *telemetry.RegistrationMetrics
	tracer   trace.Tracer

	newRunID func() string
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithTotalBudget sets the wall-clock budget of a run
func WithTotalBudget(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.totalBudget = d
	}
}

// WithBackoffInterval sets the pause between two passes
func WithBackoffInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.backoffInterval = d
	}
}

// WithStateService records run progress in the given state service
func WithStateService(svc state.RunStateService) Option {
	return func(s *Synchronizer) {
		s.stateSvc = svc
	}
}

// WithRegistrationMetrics sets the metrics for the synchronizer
func WithRegistrationMetrics(m *telemetry.RegistrationMetrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// WithTracerProvider sets the tracer provider used for run spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Synchronizer) {
		if tp != nil {
			s.tracer = tp.Tracer(telemetry.RegistrationTracerName)
		}
	}
}

// NewSynchronizer creates a synchronizer with the default budget and backoff
func NewSynchronizer(resolver endpoint.Resolver, publisher Publisher, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		resolver:        resolver,
		publisher:       publisher,
		totalBudget:     DefaultTotalBudget,
		backoffInterval: DefaultBackoffInterval,
		tracer:          noop.NewTracerProvider().Tracer(telemetry.RegistrationTracerName),
		newRunID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run carries the bookkeeping of one Run call
type run struct {
	id         string
	templateID string
	instanceID string
	ws         *WorkingSet
	total      int
	passes     int
	endpoint   string
	defect     error
}

// Run drains ws against the endpoints of templateID on behalf of instanceID.
// It returns once the working set is empty, the budget is exhausted, a defect
// occurs or ctx is cancelled.
func (s *Synchronizer) Run(ctx context.Context, templateID, instanceID string, ws *WorkingSet) Outcome {
	r := &run{
		id:         s.newRunID(),
		templateID: templateID,
		instanceID: instanceID,
		ws:         ws,
		total:      ws.Len(),
	}
	start := time.Now()

	ctx, span := otel.StartSpan(ctx, s.tracer, "registration.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			otel.AttrRunID.String(r.id),
			otel.AttrServerInstance.String(instanceID),
			otel.AttrServerTemplate.String(templateID),
			otel.AttrDefinitions.Int(r.total),
		),
	)
	defer span.End()

	logger := slog.With("server_instance", instanceID, "server_template", templateID, "run_id", r.id)
	logger.InfoContext(ctx, "Registration run started", "definitions", r.total)

	s.metrics.RecordRunStarted(ctx, templateID)
	s.beginStatus(ctx, r, start)

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.attempt(ctx, r)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.backoffInterval)),
		backoff.WithMaxElapsedTime(s.totalBudget),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.InfoContext(ctx, "Registration pass failed, retrying",
				"pass", r.passes,
				"remaining", ws.Len(),
				"retry_in", next,
				"error", err)
			s.recordProgress(ctx, r, err.Error())
		}),
	)

	outcome := s.outcomeOf(ctx, r, err)
	elapsed := time.Since(start)

	switch outcome {
	case OutcomeCompleted:
		logger.InfoContext(ctx, "All definitions registered",
			"definitions", r.total,
			"passes", r.passes,
			"duration", elapsed)
		span.SetStatus(codes.Ok, "")
	case OutcomeTimedOut:
		logger.WarnContext(ctx, "Registration budget exhausted, giving up",
			"remaining", ws.Len(),
			"budget", s.totalBudget,
			"error", err)
		otel.RecordError(span, err, "budget exhausted")
	case OutcomeAborted:
		if r.defect != nil {
			logger.ErrorContext(ctx, "Registration run aborted by unexpected defect",
				"remaining", ws.Len(),
				"error", r.defect)
		} else {
			logger.WarnContext(ctx, "Registration run cancelled",
				"remaining", ws.Len(),
				"error", err)
		}
		otel.RecordError(span, err, "aborted")
	}
	span.SetAttributes(
		otel.AttrOutcome.String(outcome.String()),
		otel.AttrPasses.Int(r.passes),
		otel.AttrRemaining.Int(ws.Len()),
	)

	s.metrics.RecordRunFinished(ctx, templateID, elapsed, outcome.String())
	s.finishStatus(ctx, r, outcome, err)

	if outcome == OutcomeCompleted {
		s.publisher.Publish(ctx, events.DataSetRegistered{
			ServerInstanceID: instanceID,
			ServerTemplateID: templateID,
		})
	}
	return outcome
}

// attempt resolves an endpoint and runs one pass over the working set
func (s *Synchronizer) attempt(ctx context.Context, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = s.classify(ctx, r, fmt.Errorf("%w: panic during registration: %v", ErrUnexpectedDefect, rec))
		}
	}()

	if r.ws.Len() == 0 {
		return nil
	}

	resolve := s.resolver.Resolve
	if r.passes > 0 {
		// The failing endpoint may be banned by now; let the resolver re-check its group
		resolve = s.resolver.ResolveForced
	}
	r.passes++

	ctx, span := otel.StartSpan(ctx, s.tracer, "registration.pass",
		trace.WithAttributes(otel.AttrPass.Int(r.passes)))
	defer func() {
		if err != nil {
			otel.RecordError(span, err, "pass failed")
		}
		span.End()
	}()

	client, err := resolve(ctx, r.templateID)
	if err != nil {
		return s.classify(ctx, r, fmt.Errorf("resolve endpoint: %w", err))
	}
	r.endpoint = client.Endpoint()
	span.SetAttributes(otel.AttrEndpoint.String(r.endpoint))

	if err := s.pass(ctx, r, client); err != nil {
		return s.classify(ctx, r, err)
	}
	return nil
}

// pass attempts the snapshot in order, stopping at the first failure.
// Confirmed definitions leave the working set when the pass ends.
func (s *Synchronizer) pass(ctx context.Context, r *run, client endpoint.AdminClient) error {
	var confirmed []string
	defer func() {
		if removed := r.ws.Remove(confirmed...); removed > 0 {
			s.recordProgress(ctx, r, "")
		}
	}()

	for _, def := range r.ws.Snapshot() {
		if err := client.ReplaceDefinition(ctx, def); err != nil {
			s.metrics.RecordAttempt(ctx, r.templateID, false)
			return fmt.Errorf("definition %s: %w", def.Name, err)
		}
		s.metrics.RecordAttempt(ctx, r.templateID, true)
		confirmed = append(confirmed, def.Name)
		slog.DebugContext(ctx, "Definition registered",
			"server_instance", r.instanceID,
			"definition", def.Name,
			"endpoint", client.Endpoint())
	}
	return nil
}

// classify keeps retryable failures retryable and stops the run on anything else
func (*Synchronizer) classify(ctx context.Context, r *run, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return backoff.Permanent(ctxErr)
	}
	if endpoint.IsRetryable(err) {
		return err
	}
	if !errors.Is(err, ErrUnexpectedDefect) {
		err = fmt.Errorf("%w: %w", ErrUnexpectedDefect, err)
	}
	r.defect = err
	return backoff.Permanent(err)
}

func (*Synchronizer) outcomeOf(ctx context.Context, r *run, err error) Outcome {
	switch {
	case err == nil && r.ws.Len() == 0:
		return OutcomeCompleted
	case r.defect != nil, ctx.Err() != nil:
		return OutcomeAborted
	default:
		return OutcomeTimedOut
	}
}

func (s *Synchronizer) beginStatus(ctx context.Context, r *run, start time.Time) {
	if s.stateSvc == nil {
		return
	}
	err := s.stateSvc.UpdateRun(ctx, r.instanceID, &status.RunStatus{
		RunID:            r.id,
		ServerInstanceID: r.instanceID,
		ServerTemplateID: r.templateID,
		Phase:            status.RunPhaseRegistering,
		Total:            r.total,
		Pending:          r.total,
		StartedAt:        &start,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to record run start", "server_instance", r.instanceID, "error", err)
	}
}

// recordProgress updates the run status unless a newer run replaced it
func (s *Synchronizer) recordProgress(ctx context.Context, r *run, message string) {
	if s.stateSvc == nil {
		return
	}
	pending := r.ws.Len()
	_, err := s.stateSvc.UpdateRunAtomically(ctx, r.instanceID, func(st *status.RunStatus) bool {
		if st.RunID != r.id {
			return false
		}
		st.Pending = pending
		st.Registered = r.total - pending
		st.Passes = r.passes
		st.Endpoint = r.endpoint
		st.Message = message
		return true
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to record run progress", "server_instance", r.instanceID, "error", err)
	}
}

func (s *Synchronizer) finishStatus(ctx context.Context, r *run, outcome Outcome, runErr error) {
	if s.stateSvc == nil {
		return
	}

	message := "All definitions registered"
	if outcome != OutcomeCompleted && runErr != nil {
		message = runErr.Error()
	}
	pending := r.ws.Len()
	finished := time.Now()

	// The run context may already be cancelled; the final status must still be written
	_, err := s.stateSvc.UpdateRunAtomically(context.WithoutCancel(ctx), r.instanceID, func(st *status.RunStatus) bool {
		if st.RunID != r.id {
			return false
		}
		st.Phase = outcome.Phase()
		st.Pending = pending
		st.Registered = r.total - pending
		st.Passes = r.passes
		st.Endpoint = r.endpoint
		st.Message = message
		st.FinishedAt = &finished
		return true
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to record run outcome", "server_instance", r.instanceID, "error", err)
	}
}
