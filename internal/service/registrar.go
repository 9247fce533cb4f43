package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/status"
)

// ConnectedPublisher delivers ServerInstanceConnected events to their listeners
type ConnectedPublisher interface {
	Publish(ctx context.Context, event events.ServerInstanceConnected) int
}

// TemplateHealth reports the configured server templates and the health of their endpoints
type TemplateHealth interface {
	Templates() []string
	Health(templateID string) ([]endpoint.EndpointHealth, error)
}

type registrarService struct {
	source    definitions.Source
	connected ConnectedPublisher
	runs      state.RunStateService
	templates TemplateHealth
}

var _ RegistrarService = (*registrarService)(nil)

// NewRegistrarService creates the service backing the HTTP API
func NewRegistrarService(
	source definitions.Source,
	connected ConnectedPublisher,
	runs state.RunStateService,
	templates TemplateHealth,
) RegistrarService {
	return &registrarService{
		source:    source,
		connected: connected,
		runs:      runs,
		templates: templates,
	}
}

func (s *registrarService) CheckReadiness(ctx context.Context) error {
	if _, err := s.source.ListPendingDefinitions(ctx, true); err != nil {
		return fmt.Errorf("definitions are not readable: %w", err)
	}
	return nil
}

func (s *registrarService) ServerInstanceConnected(ctx context.Context, event events.ServerInstanceConnected) (int, error) {
	if err := event.Validate(); err != nil {
		return 0, err
	}
	return s.connected.Publish(ctx, event), nil
}

func (s *registrarService) ListRuns(ctx context.Context, opts ...Option[ListRunsOptions]) ([]*status.RunStatus, error) {
	options := &ListRunsOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	runs, err := s.runs.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	result := make([]*status.RunStatus, 0, len(runs))
	for _, run := range runs {
		if options.matches(run) {
			result = append(result, run)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ServerInstanceID < result[j].ServerInstanceID
	})
	return result, nil
}

func (s *registrarService) GetRun(ctx context.Context, instanceID string) (*status.RunStatus, error) {
	return s.runs.GetRun(ctx, instanceID)
}

func (s *registrarService) ListServerTemplates(_ context.Context) ([]ServerTemplate, error) {
	ids := s.templates.Templates()
	result := make([]ServerTemplate, 0, len(ids))
	for _, id := range ids {
		health, err := s.templates.Health(id)
		if err != nil {
			return nil, err
		}
		result = append(result, ServerTemplate{ID: id, Endpoints: health})
	}
	return result, nil
}

func (s *registrarService) GetServerTemplate(_ context.Context, templateID string) (*ServerTemplate, error) {
	health, err := s.templates.Health(templateID)
	if err != nil {
		return nil, err
	}
	return &ServerTemplate{ID: templateID, Endpoints: health}, nil
}
