// Package endpoint resolves the administrative endpoints of server templates and
// keeps track of their health.
//
// Every endpoint moves through explicit health states:
//
//	healthy -> failed      a communication error was observed (the endpoint is banned)
//	failed  -> rechecked   a forced resolution probed the endpoint successfully
//	*       -> healthy     a request through the endpoint succeeded
//
// Banned endpoints are never selected by Resolve. ResolveForced probes them first
// and lifts the ban of every endpoint that answers.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/telemetry"
)

// Resolver hands out clients for the administrative endpoints of a server template
//
//go:generate mockgen -destination=mocks/mock_resolver.go -package=mocks github.com/stacklok/dataset-registrar/internal/endpoint Resolver
type Resolver interface {
	// Resolve returns a client for a usable endpoint, preferring the one selected last time
	Resolve(ctx context.Context, templateID string) (AdminClient, error)

	// ResolveForced re-checks banned endpoints, clearing the ban of those that answer,
	// before selecting an endpoint
	ResolveForced(ctx context.Context, templateID string) (AdminClient, error)
}

// HealthState is the health of a single endpoint as seen by the resolver
type HealthState string

const (
	// HealthStateHealthy means the endpoint is usable
	HealthStateHealthy HealthState = "healthy"

	// HealthStateFailed means the endpoint is banned after a communication error
	HealthStateFailed HealthState = "failed"

	// HealthStateRechecked means a banned endpoint answered a probe and is usable again
	HealthStateRechecked HealthState = "rechecked"
)

// EndpointHealth is a snapshot of the health of one endpoint
type EndpointHealth struct {
	URL              string      `json:"url"`
	State            HealthState `json:"state"`
	ConsecutiveFails int         `json:"consecutiveFails"`
	LastFailure      *time.Time  `json:"lastFailure,omitempty"`
	LastCheck        *time.Time  `json:"lastCheck,omitempty"`
	LastError        string      `json:"lastError,omitempty"`
}

func (h EndpointHealth) usable() bool {
	return h.State != HealthStateFailed
}

// Template describes a server template and the endpoints of its instances
type Template struct {
	ID             string
	Endpoints      []string
	RequestTimeout time.Duration
	ProbePath      string
}

// ClientFactory creates the client used for one endpoint
type ClientFactory func(endpointURL string, timeout time.Duration) AdminClient

// ProbeFunc checks whether a banned endpoint answers again
type ProbeFunc func(ctx context.Context, endpointURL, probePath string) error

type endpointState struct {
	health EndpointHealth
	client AdminClient
}

type templateState struct {
	Template
	endpoints []*endpointState
	preferred int
}

// GroupResolver is the Resolver for statically configured server templates.
// It is safe for concurrent use; no lock is held while probing endpoints.
type GroupResolver struct {
	mu        sync.RWMutex
	templates map[string]*templateState

	clientFactory ClientFactory
	probe         ProbeFunc
	metrics       *telemetry.EndpointMetrics
	now           func() time.Time
}

// ResolverOption configures a GroupResolver
type ResolverOption func(*GroupResolver)

// WithClientFactory overrides how endpoint clients are created
func WithClientFactory(f ClientFactory) ResolverOption {
	return func(r *GroupResolver) {
		r.clientFactory = f
	}
}

// WithProbeFunc overrides how banned endpoints are re-checked
func WithProbeFunc(f ProbeFunc) ResolverOption {
	return func(r *GroupResolver) {
		r.probe = f
	}
}

// WithEndpointMetrics records bans and re-checks
func WithEndpointMetrics(m *telemetry.EndpointMetrics) ResolverOption {
	return func(r *GroupResolver) {
		r.metrics = m
	}
}

// NewGroupResolver creates a resolver for the given templates
func NewGroupResolver(templates []Template, opts ...ResolverOption) (*GroupResolver, error) {
	probeClient := &http.Client{Timeout: DefaultTimeout}
	r := &GroupResolver{
		templates:     make(map[string]*templateState, len(templates)),
		clientFactory: NewHTTPAdminClient,
		probe: func(ctx context.Context, endpointURL, probePath string) error {
			return Probe(ctx, probeClient, endpointURL, probePath)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, tmpl := range templates {
		if tmpl.ID == "" {
			return nil, fmt.Errorf("template[%d]: id is required", i)
		}
		if _, exists := r.templates[tmpl.ID]; exists {
			return nil, fmt.Errorf("template[%d]: duplicate template id '%s'", i, tmpl.ID)
		}

		state := &templateState{Template: tmpl, preferred: -1}
		for _, raw := range tmpl.Endpoints {
			u := strings.TrimRight(raw, "/")
			state.endpoints = append(state.endpoints, &endpointState{
				health: EndpointHealth{URL: u, State: HealthStateHealthy},
				client: r.clientFactory(u, tmpl.RequestTimeout),
			})
		}
		r.templates[tmpl.ID] = state
	}

	return r, nil
}

// Resolve returns a client for the preferred endpoint if it is still usable,
// otherwise for the first usable endpoint in configuration order
func (r *GroupResolver) Resolve(_ context.Context, templateID string) (AdminClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmpl, ok := r.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	return r.selectLocked(tmpl)
}

// ResolveForced probes every banned endpoint of the template before selecting one
func (r *GroupResolver) ResolveForced(ctx context.Context, templateID string) (AdminClient, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[templateID]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	var banned []string
	for _, ep := range tmpl.endpoints {
		if ep.health.State == HealthStateFailed {
			banned = append(banned, ep.health.URL)
		}
	}
	probePath, timeout := tmpl.ProbePath, tmpl.RequestTimeout
	r.mu.RUnlock()

	for _, endpointURL := range banned {
		probeCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			probeCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		err := r.probe(probeCtx, endpointURL, probePath)
		cancel()
		r.recordProbe(templateID, endpointURL, err)
		r.metrics.RecordRecheck(ctx, templateID, endpointURL, err == nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(tmpl)
}

// MarkFailed bans an endpoint after a communication error
func (r *GroupResolver) MarkFailed(templateID, endpointURL string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmpl, idx := r.findLocked(templateID, endpointURL)
	if tmpl == nil {
		return
	}

	now := r.now()
	ep := tmpl.endpoints[idx]
	wasUsable := ep.health.usable()
	ep.health.State = HealthStateFailed
	ep.health.ConsecutiveFails++
	ep.health.LastFailure = &now
	if cause != nil {
		ep.health.LastError = cause.Error()
	}
	if tmpl.preferred == idx {
		tmpl.preferred = -1
	}

	if wasUsable {
		r.metrics.RecordBan(context.Background(), templateID, endpointURL)
		slog.Warn("Endpoint marked as failed",
			"server_template", templateID,
			"endpoint", endpointURL,
			"consecutive_fails", ep.health.ConsecutiveFails)
	}
}

// markHealthy records a successful request through an endpoint
func (r *GroupResolver) markHealthy(templateID, endpointURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmpl, idx := r.findLocked(templateID, endpointURL)
	if tmpl == nil {
		return
	}
	ep := tmpl.endpoints[idx]
	ep.health.State = HealthStateHealthy
	ep.health.ConsecutiveFails = 0
	ep.health.LastError = ""
}

func (r *GroupResolver) recordProbe(templateID, endpointURL string, probeErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmpl, idx := r.findLocked(templateID, endpointURL)
	if tmpl == nil {
		return
	}

	now := r.now()
	ep := tmpl.endpoints[idx]
	ep.health.LastCheck = &now
	if probeErr != nil {
		ep.health.LastError = probeErr.Error()
		slog.Debug("Banned endpoint still unreachable",
			"server_template", templateID,
			"endpoint", endpointURL,
			"error", probeErr)
		return
	}

	// A concurrent success may already have restored the endpoint
	if ep.health.State == HealthStateFailed {
		ep.health.State = HealthStateRechecked
		ep.health.LastError = ""
		slog.Info("Endpoint re-checked, ban cleared",
			"server_template", templateID,
			"endpoint", endpointURL)
	}
}

// Templates returns the configured template ids in sorted order
func (r *GroupResolver) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Health returns a snapshot of the endpoint health of a template
func (r *GroupResolver) Health(templateID string) ([]EndpointHealth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}

	result := make([]EndpointHealth, 0, len(tmpl.endpoints))
	for _, ep := range tmpl.endpoints {
		result = append(result, ep.health)
	}
	return result, nil
}

func (r *GroupResolver) selectLocked(tmpl *templateState) (AdminClient, error) {
	idx := -1
	if tmpl.preferred >= 0 && tmpl.endpoints[tmpl.preferred].health.usable() {
		idx = tmpl.preferred
	} else {
		for i, ep := range tmpl.endpoints {
			if ep.health.usable() {
				idx = i
				break
			}
		}
	}

	if idx < 0 {
		return nil, fmt.Errorf("%w: server template %s has %d endpoint(s), none usable",
			ErrUnavailable, tmpl.ID, len(tmpl.endpoints))
	}

	tmpl.preferred = idx
	return &trackedClient{
		resolver:   r,
		templateID: tmpl.ID,
		inner:      tmpl.endpoints[idx].client,
	}, nil
}

func (r *GroupResolver) findLocked(templateID, endpointURL string) (*templateState, int) {
	tmpl, ok := r.templates[templateID]
	if !ok {
		return nil, -1
	}
	for i, ep := range tmpl.endpoints {
		if ep.health.URL == endpointURL {
			return tmpl, i
		}
	}
	return nil, -1
}

// trackedClient reports request results back to the resolver's health bookkeeping
type trackedClient struct {
	resolver   *GroupResolver
	templateID string
	inner      AdminClient
}

func (c *trackedClient) Endpoint() string {
	return c.inner.Endpoint()
}

func (c *trackedClient) ReplaceDefinition(ctx context.Context, def definitions.PendingDefinition) error {
	err := c.inner.ReplaceDefinition(ctx, def)

	var commErr *CommunicationError
	switch {
	case err == nil:
		c.resolver.markHealthy(c.templateID, c.inner.Endpoint())
	case errors.As(err, &commErr):
		c.resolver.MarkFailed(c.templateID, c.inner.Endpoint(), err)
	}
	return err
}
