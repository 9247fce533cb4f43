// Package service provides the operations behind the registrar's HTTP API
package service

import (
	"context"
	"fmt"

	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/status"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go RegistrarService

// RegistrarService defines the operations exposed over HTTP
type RegistrarService interface {
	// CheckReadiness checks that the definitions can be read
	CheckReadiness(ctx context.Context) error

	// ServerInstanceConnected hands the event to its listeners and returns how many accepted it
	ServerInstanceConnected(ctx context.Context, event events.ServerInstanceConnected) (int, error)

	// ListRuns returns the latest run of every server instance, ordered by instance id
	ListRuns(ctx context.Context, opts ...Option[ListRunsOptions]) ([]*status.RunStatus, error)

	// GetRun returns the latest run of one server instance, or state.ErrRunNotFound
	GetRun(ctx context.Context, instanceID string) (*status.RunStatus, error)

	// ListServerTemplates returns every configured server template with endpoint health
	ListServerTemplates(ctx context.Context) ([]ServerTemplate, error)

	// GetServerTemplate returns one server template with endpoint health, or endpoint.ErrUnknownTemplate
	GetServerTemplate(ctx context.Context, templateID string) (*ServerTemplate, error)
}

// ServerTemplate is a server template as reported by the API
type ServerTemplate struct {
	ID        string                    `json:"id"`
	Endpoints []endpoint.EndpointHealth `json:"endpoints"`
}

// Option is a function that sets an option for a service operation
type Option[T ListRunsOptions] func(*T) error

// ListRunsOptions is the options for the ListRuns operation
type ListRunsOptions struct {
	Phase            status.RunPhase
	ServerTemplateID string
}

// WithPhase keeps runs in the given phase
func WithPhase(phase status.RunPhase) Option[ListRunsOptions] {
	return func(o *ListRunsOptions) error {
		switch phase {
		case status.RunPhaseRegistering, status.RunPhaseCompleted, status.RunPhaseTimedOut, status.RunPhaseAborted:
			o.Phase = phase
			return nil
		default:
			return fmt.Errorf("invalid phase: %s", phase)
		}
	}
}

// WithServerTemplate keeps runs of the given server template
func WithServerTemplate(templateID string) Option[ListRunsOptions] {
	return func(o *ListRunsOptions) error {
		if templateID == "" {
			return fmt.Errorf("invalid server template: %s", templateID)
		}
		o.ServerTemplateID = templateID
		return nil
	}
}

func (o *ListRunsOptions) matches(run *status.RunStatus) bool {
	if o.Phase != "" && run.Phase != o.Phase {
		return false
	}
	if o.ServerTemplateID != "" && run.ServerTemplateID != o.ServerTemplateID {
		return false
	}
	return true
}
