// Package state keeps track of registration runs and persists their status.
package state

import (
	"context"
	"errors"

	"github.com/stacklok/dataset-registrar/internal/status"
)

// ErrRunNotFound is returned when no run was recorded for a server instance
var ErrRunNotFound = errors.New("run not found")

// RunStateService provides methods for recording and inspecting registration runs.
//
//go:generate mockgen -destination=mocks/mock_run_state_service.go -package=mocks github.com/stacklok/dataset-registrar/internal/state RunStateService
type RunStateService interface {
	// Initialize loads the persisted run statuses. It is intended to be called
	// at application startup; runs left in Registering were interrupted and are
	// marked Aborted.
	Initialize(ctx context.Context) error
	// ListRuns returns the latest run of every server instance
	ListRuns(ctx context.Context) (map[string]*status.RunStatus, error)
	// GetRun returns the latest run of a server instance, or ErrRunNotFound
	GetRun(ctx context.Context, instanceID string) (*status.RunStatus, error)
	// UpdateRun replaces the latest run of a server instance
	UpdateRun(ctx context.Context, instanceID string, runStatus *status.RunStatus) error
	// UpdateRunAtomically fetches the run of a server instance, applies
	// testAndUpdateFn to a copy of it, and stores the copy if the function
	// reports a modification, all as a single atomic action.
	UpdateRunAtomically(
		ctx context.Context,
		instanceID string,
		testAndUpdateFn func(runStatus *status.RunStatus) bool,
	) (bool, error)
}
