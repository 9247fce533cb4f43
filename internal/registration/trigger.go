package registration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/events"
)

// Trigger starts a registration run when a server instance connects
type Trigger struct {
	source    definitions.Source
	runner    Runner
	scheduler Scheduler
}

var _ events.Listener[events.ServerInstanceConnected] = (*Trigger)(nil)

// NewTrigger creates a trigger reading definitions from source and handing runs to scheduler
func NewTrigger(source definitions.Source, runner Runner, scheduler Scheduler) *Trigger {
	return &Trigger{
		source:    source,
		runner:    runner,
		scheduler: scheduler,
	}
}

// Handle implements events.Listener
func (t *Trigger) Handle(ctx context.Context, event events.ServerInstanceConnected) error {
	return t.OnServerInstanceConnected(ctx, event)
}

// OnServerInstanceConnected builds the working set for the instance and schedules
// its run. It returns without waiting for the run; an empty working set schedules nothing.
func (t *Trigger) OnServerInstanceConnected(ctx context.Context, event events.ServerInstanceConnected) error {
	if err := event.Validate(); err != nil {
		return err
	}

	logger := slog.With(
		"server_instance", event.ServerInstanceID,
		"server_template", event.ServerTemplateID)
	logger.InfoContext(ctx, "Server instance connected, registering data sets")

	defs, err := t.source.ListPendingDefinitions(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list pending definitions: %w", err)
	}

	ws := NewWorkingSet(definitions.RemoteDefinitions(defs)...)
	count := ws.Len()
	if count == 0 {
		logger.InfoContext(ctx, "No remote data sets to register")
		return nil
	}

	err = t.scheduler.Schedule(func(runCtx context.Context) {
		t.runner.Run(runCtx, event.ServerTemplateID, event.ServerInstanceID, ws)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule registration run: %w", err)
	}

	logger.DebugContext(ctx, "Registration run scheduled", "definitions", count)
	return nil
}
