package registration_test

import (
	"context"
	"sync"

	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
)

// scriptedClient answers ReplaceDefinition with the result chosen by fail
type scriptedClient struct {
	url string

	// fail returns the error for the n-th attempt (1-based) of a definition, nil for success
	fail func(name string, n int) error

	mu       sync.Mutex
	attempts []string
	counts   map[string]int
}

func newScriptedClient(fail func(name string, n int) error) *scriptedClient {
	if fail == nil {
		fail = func(string, int) error { return nil }
	}
	return &scriptedClient{url: "http://kie-1:8080", fail: fail, counts: map[string]int{}}
}

func (c *scriptedClient) Endpoint() string { return c.url }

func (c *scriptedClient) ReplaceDefinition(_ context.Context, def definitions.PendingDefinition) error {
	c.mu.Lock()
	c.attempts = append(c.attempts, def.Name)
	c.counts[def.Name]++
	n := c.counts[def.Name]
	c.mu.Unlock()
	return c.fail(def.Name, n)
}

func (c *scriptedClient) Attempts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.attempts...)
}

// fakeResolver hands out one client and counts normal and forced resolutions
type fakeResolver struct {
	client endpoint.AdminClient

	// unavailable makes the first n resolutions fail with endpoint.ErrUnavailable
	unavailable int

	mu       sync.Mutex
	resolves int
	forced   int
	groups   []string
}

func (r *fakeResolver) Resolve(_ context.Context, templateID string) (endpoint.AdminClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolves++
	return r.next(templateID)
}

func (r *fakeResolver) ResolveForced(_ context.Context, templateID string) (endpoint.AdminClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forced++
	return r.next(templateID)
}

func (r *fakeResolver) next(templateID string) (endpoint.AdminClient, error) {
	r.groups = append(r.groups, templateID)
	if r.unavailable > 0 {
		r.unavailable--
		return nil, endpoint.ErrUnavailable
	}
	return r.client, nil
}

func (r *fakeResolver) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolves, r.forced
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DataSetRegistered
}

func (p *recordingPublisher) Publish(_ context.Context, e events.DataSetRegistered) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return 1
}

func (p *recordingPublisher) Events() []events.DataSetRegistered {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.DataSetRegistered(nil), p.events...)
}
