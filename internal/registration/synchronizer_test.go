package registration_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/endpoint"
	endpointmocks "github.com/stacklok/dataset-registrar/internal/endpoint/mocks"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/registration"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/status"
	"github.com/stacklok/dataset-registrar/internal/telemetry"
)

const (
	testTemplate = "kie"
	testInstance = "kie-server-1"

	testInterval = 5 * time.Millisecond
)

var errTransient = &endpoint.RemoteServiceError{Endpoint: "http://kie-1:8080", StatusCode: 503, Message: "starting"}

func newTestSynchronizer(resolver endpoint.Resolver, publisher registration.Publisher, opts ...registration.Option) *registration.Synchronizer {
	opts = append([]registration.Option{
		registration.WithTotalBudget(5 * time.Second),
		registration.WithBackoffInterval(testInterval),
	}, opts...)
	return registration.NewSynchronizer(resolver, publisher, opts...)
}

func TestSynchronizer_CompletesOnFirstPass(t *testing.T) {
	t.Parallel()

	client := newScriptedClient(nil)
	resolver := &fakeResolver{client: client}
	publisher := &recordingPublisher{}
	ws := registration.NewWorkingSet(def("a"), def("b"), def("c"))

	outcome := newTestSynchronizer(resolver, publisher).Run(context.Background(), testTemplate, testInstance, ws)

	assert.Equal(t, registration.OutcomeCompleted, outcome)
	assert.Zero(t, ws.Len())
	assert.Equal(t, []string{"a", "b", "c"}, client.Attempts())
	assert.Equal(t, []events.DataSetRegistered{{ServerInstanceID: testInstance, ServerTemplateID: testTemplate}}, publisher.Events())

	resolves, forced := resolver.counts()
	assert.Equal(t, 1, resolves)
	assert.Zero(t, forced)
}

func TestSynchronizer_EventuallySucceeds(t *testing.T) {
	t.Parallel()

	client := newScriptedClient(func(name string, n int) error {
		if name == "b" && n < 3 {
			return &endpoint.CommunicationError{Endpoint: "http://kie-1:8080", Err: errors.New("connection refused")}
		}
		return nil
	})
	resolver := &fakeResolver{client: client}
	publisher := &recordingPublisher{}
	ws := registration.NewWorkingSet(def("a"), def("b"))

	outcome := newTestSynchronizer(resolver, publisher).Run(context.Background(), testTemplate, testInstance, ws)

	assert.Equal(t, registration.OutcomeCompleted, outcome)
	assert.Len(t, publisher.Events(), 1, "completion is published exactly once")
	assert.Equal(t, []string{"a", "b", "b", "b"}, client.Attempts())

	// Every retry re-resolves with a forced health re-check
	resolves, forced := resolver.counts()
	assert.Equal(t, 1, resolves)
	assert.Equal(t, 2, forced)
}

func TestSynchronizer_TimesOutWithinBudget(t *testing.T) {
	t.Parallel()

	const budget = 150 * time.Millisecond

	client := newScriptedClient(func(string, int) error { return errTransient })
	publisher := &recordingPublisher{}
	ws := registration.NewWorkingSet(def("a"), def("b"))

	s := newTestSynchronizer(&fakeResolver{client: client}, publisher,
		registration.WithTotalBudget(budget),
		registration.WithBackoffInterval(10*time.Millisecond))

	start := time.Now()
	outcome := s.Run(context.Background(), testTemplate, testInstance, ws)
	elapsed := time.Since(start)

	assert.Equal(t, registration.OutcomeTimedOut, outcome)
	assert.Empty(t, publisher.Events())
	assert.Equal(t, 2, ws.Len())
	assert.GreaterOrEqual(t, elapsed, budget-20*time.Millisecond)
	assert.Less(t, elapsed, budget+time.Second)

	// b is never reached because a fails every pass
	for _, name := range client.Attempts() {
		assert.Equal(t, "a", name)
	}
}

func TestSynchronizer_ConfirmedItemsAreNeverRetried(t *testing.T) {
	t.Parallel()

	confirmed := map[string]bool{}
	var ws *registration.WorkingSet
	last := 0
	client := newScriptedClient(func(name string, n int) error {
		assert.False(t, confirmed[name], "%s attempted after it was confirmed", name)
		assert.True(t, last == 0 || ws.Len() <= last, "working set never grows")
		last = ws.Len()

		// Every definition but the first fails on its first attempt
		if n == 1 && name != "a" {
			return errTransient
		}
		confirmed[name] = true
		return nil
	})
	ws = registration.NewWorkingSet(def("a"), def("b"), def("c"), def("d"))

	outcome := newTestSynchronizer(&fakeResolver{client: client}, &recordingPublisher{}).
		Run(context.Background(), testTemplate, testInstance, ws)

	require.Equal(t, registration.OutcomeCompleted, outcome)
	assert.Equal(t, []string{"a", "b", "b", "c", "c", "d", "d"}, client.Attempts())
}

func TestSynchronizer_FailureAbortsRestOfPass(t *testing.T) {
	t.Parallel()

	client := newScriptedClient(func(name string, n int) error {
		if name == "b" && n == 1 {
			return errTransient
		}
		return nil
	})
	ws := registration.NewWorkingSet(def("a"), def("b"), def("c"))

	outcome := newTestSynchronizer(&fakeResolver{client: client}, &recordingPublisher{}).
		Run(context.Background(), testTemplate, testInstance, ws)

	assert.Equal(t, registration.OutcomeCompleted, outcome)
	// Pass 1: a succeeds, b fails, c untried. Pass 2: b and c, without a.
	assert.Equal(t, []string{"a", "b", "b", "c"}, client.Attempts())
}

func TestSynchronizer_DefectAbortsRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fail func(name string, n int) error
	}{
		{
			name: "unclassified error",
			fail: func(string, int) error { return errors.New("nil pointer in codec") },
		},
		{
			name: "panic in client",
			fail: func(string, int) error { panic("codec exploded") },
		},
		{
			name: "defect after a transient failure",
			fail: func(_ string, n int) error {
				if n == 1 {
					return errTransient
				}
				return errors.New("schema mismatch")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newScriptedClient(tt.fail)
			publisher := &recordingPublisher{}
			ws := registration.NewWorkingSet(def("a"), def("b"))

			outcome := newTestSynchronizer(&fakeResolver{client: client}, publisher).
				Run(context.Background(), testTemplate, testInstance, ws)

			assert.Equal(t, registration.OutcomeAborted, outcome)
			assert.Empty(t, publisher.Events())
			assert.Equal(t, 2, ws.Len())

			attempts := client.Attempts()
			assert.Equal(t, "a", attempts[len(attempts)-1], "no attempt follows the defect")
		})
	}
}

func TestSynchronizer_InvalidDefinitionIsDefect(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := endpointmocks.NewMockAdminClient(ctrl)
	resolver := endpointmocks.NewMockResolver(ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), testTemplate).Return(client, nil)
	client.EXPECT().Endpoint().Return("http://kie-1:8080").AnyTimes()
	client.EXPECT().ReplaceDefinition(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: definition a has no expression", definitions.ErrInvalidDefinition))

	publisher := &recordingPublisher{}
	outcome := newTestSynchronizer(resolver, publisher).
		Run(context.Background(), testTemplate, testInstance, registration.NewWorkingSet(def("a")))

	assert.Equal(t, registration.OutcomeAborted, outcome)
	assert.Empty(t, publisher.Events())
}

func TestSynchronizer_UnknownTemplateIsDefect(t *testing.T) {
	t.Parallel()

	resolver, err := endpoint.NewGroupResolver(nil)
	require.NoError(t, err)
	publisher := &recordingPublisher{}

	outcome := newTestSynchronizer(resolver, publisher).
		Run(context.Background(), "missing", testInstance, registration.NewWorkingSet(def("a")))

	assert.Equal(t, registration.OutcomeAborted, outcome)
	assert.Empty(t, publisher.Events())
}

func TestSynchronizer_RetriesUnavailableTemplate(t *testing.T) {
	t.Parallel()

	client := newScriptedClient(nil)
	resolver := &fakeResolver{client: client, unavailable: 2}
	publisher := &recordingPublisher{}

	outcome := newTestSynchronizer(resolver, publisher).
		Run(context.Background(), testTemplate, testInstance, registration.NewWorkingSet(def("a")))

	assert.Equal(t, registration.OutcomeCompleted, outcome)
	assert.Len(t, publisher.Events(), 1)
	resolves, forced := resolver.counts()
	assert.Equal(t, 1, resolves)
	assert.Equal(t, 2, forced)
}

func TestSynchronizer_CancelledContextAborts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	client := newScriptedClient(func(string, int) error {
		cancel()
		return errTransient
	})
	publisher := &recordingPublisher{}
	ws := registration.NewWorkingSet(def("a"))

	outcome := newTestSynchronizer(&fakeResolver{client: client}, publisher).
		Run(ctx, testTemplate, testInstance, ws)

	assert.Equal(t, registration.OutcomeAborted, outcome)
	assert.Empty(t, publisher.Events())
	assert.Equal(t, 1, ws.Len())
}

func TestSynchronizer_RecordsRunStatus(t *testing.T) {
	t.Parallel()

	stateSvc := state.NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))
	client := newScriptedClient(func(name string, n int) error {
		if name == "b" && n == 1 {
			return errTransient
		}
		return nil
	})

	outcome := newTestSynchronizer(&fakeResolver{client: client}, &recordingPublisher{},
		registration.WithStateService(stateSvc)).
		Run(context.Background(), testTemplate, testInstance, registration.NewWorkingSet(def("a"), def("b"), def("c")))
	require.Equal(t, registration.OutcomeCompleted, outcome)

	run, err := stateSvc.GetRun(context.Background(), testInstance)
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, status.RunPhaseCompleted, run.Phase)
	assert.Equal(t, testTemplate, run.ServerTemplateID)
	assert.Equal(t, 3, run.Total)
	assert.Equal(t, 3, run.Registered)
	assert.Zero(t, run.Pending)
	assert.Equal(t, 2, run.Passes)
	assert.Equal(t, "http://kie-1:8080", run.Endpoint)
	assert.NotNil(t, run.StartedAt)
	assert.NotNil(t, run.FinishedAt)
}

func TestSynchronizer_RecordsTimedOutStatus(t *testing.T) {
	t.Parallel()

	stateSvc := state.NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))
	client := newScriptedClient(func(string, int) error { return errTransient })

	outcome := newTestSynchronizer(&fakeResolver{client: client}, &recordingPublisher{},
		registration.WithStateService(stateSvc),
		registration.WithTotalBudget(50*time.Millisecond)).
		Run(context.Background(), testTemplate, testInstance, registration.NewWorkingSet(def("a")))
	require.Equal(t, registration.OutcomeTimedOut, outcome)

	run, err := stateSvc.GetRun(context.Background(), testInstance)
	require.NoError(t, err)
	assert.Equal(t, status.RunPhaseTimedOut, run.Phase)
	assert.Equal(t, 1, run.Pending)
	assert.Contains(t, run.Message, "HTTP 503")
}

func TestSynchronizer_Telemetry(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	metrics, err := telemetry.NewRegistrationMetrics(mp)
	require.NoError(t, err)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client := newScriptedClient(nil)
	outcome := newTestSynchronizer(&fakeResolver{client: client}, &recordingPublisher{},
		registration.WithRegistrationMetrics(metrics),
		registration.WithTracerProvider(tp)).
		Run(context.Background(), testTemplate, testInstance, registration.NewWorkingSet(def("a"), def("b")))
	require.Equal(t, registration.OutcomeCompleted, outcome)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	pass, run := spans[0], spans[1]
	assert.Equal(t, "registration.pass", pass.Name)
	assert.Equal(t, "registration.run", run.Name)
	assert.Equal(t, run.SpanContext.SpanID(), pass.Parent.SpanID())

	var found bool
	for _, attr := range run.Attributes {
		if attr.Key == "registration.outcome" {
			found = true
			assert.Equal(t, "completed", attr.Value.AsString())
		}
	}
	assert.True(t, found)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var attempts int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "dsr_registration_attempts_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				attempts += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), attempts)
}
