package app

import (
	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/registration"
	"github.com/stacklok/dataset-registrar/internal/service"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Resolver tracks the endpoints of every configured server template
	Resolver *endpoint.GroupResolver

	// Scheduler runs registration runs in the background
	Scheduler *registration.AsyncScheduler

	// Connected receives server instance connection events
	Connected *events.Bus[events.ServerInstanceConnected]

	// Registered broadcasts completed registrations
	Registered *events.Bus[events.DataSetRegistered]

	// StateService keeps the status of every run
	StateService state.RunStateService

	// RegistrarService provides the business logic behind the API
	RegistrarService service.RegistrarService

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
