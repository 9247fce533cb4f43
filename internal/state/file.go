package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/dataset-registrar/internal/status"
)

type fileStateService struct {
	statusPersistence status.StatusPersistence
	now               func() time.Time

	mu         sync.RWMutex
	cachedRuns map[string]*status.RunStatus
}

// NewFileStateService creates a run state service that caches statuses in
// memory and writes every change through to statusPersistence
func NewFileStateService(statusPersistence status.StatusPersistence) RunStateService {
	return &fileStateService{
		statusPersistence: statusPersistence,
		now:               time.Now,
		cachedRuns:        make(map[string]*status.RunStatus),
	}
}

func (f *fileStateService) Initialize(ctx context.Context) error {
	loaded, err := f.statusPersistence.LoadAllStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to load run statuses: %w", err)
	}

	/*
	 * This assumes that only one process at a time owns the status directory.
	 * A run still Registering can only be a leftover from a previous process.
	 */
	for instanceID, runStatus := range loaded {
		if runStatus.Phase == status.RunPhaseRegistering {
			slog.Warn("Previous registration run was interrupted, marking as aborted",
				"server_instance", instanceID,
				"run_id", runStatus.RunID,
				"pending", runStatus.Pending)
			now := f.now()
			runStatus.Phase = status.RunPhaseAborted
			runStatus.Message = "Previous run was interrupted"
			runStatus.FinishedAt = &now
			if err := f.statusPersistence.SaveStatus(ctx, instanceID, runStatus); err != nil {
				slog.Warn("Failed to persist corrected run status",
					"server_instance", instanceID,
					"error", err)
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for instanceID, runStatus := range loaded {
		f.cachedRuns[instanceID] = runStatus
	}
	slog.Info("Loaded registration run statuses", "count", len(loaded))
	return nil
}

func (f *fileStateService) ListRuns(_ context.Context) (map[string]*status.RunStatus, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make(map[string]*status.RunStatus, len(f.cachedRuns))
	for instanceID, runStatus := range f.cachedRuns {
		statusCopy := *runStatus
		result[instanceID] = &statusCopy
	}
	return result, nil
}

func (f *fileStateService) GetRun(_ context.Context, instanceID string) (*status.RunStatus, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	runStatus, exists := f.cachedRuns[instanceID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, instanceID)
	}
	statusCopy := *runStatus
	return &statusCopy, nil
}

func (f *fileStateService) UpdateRun(ctx context.Context, instanceID string, runStatus *status.RunStatus) error {
	if runStatus == nil {
		return fmt.Errorf("run status for instance %s is nil", instanceID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	statusCopy := *runStatus
	if err := f.statusPersistence.SaveStatus(ctx, instanceID, &statusCopy); err != nil {
		return err
	}
	f.cachedRuns[instanceID] = &statusCopy
	return nil
}

func (f *fileStateService) UpdateRunAtomically(
	ctx context.Context,
	instanceID string,
	testAndUpdateFn func(runStatus *status.RunStatus) bool,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	runStatus, exists := f.cachedRuns[instanceID]
	if !exists {
		return false, fmt.Errorf("%w: %s", ErrRunNotFound, instanceID)
	}

	statusCopy := *runStatus
	if !testAndUpdateFn(&statusCopy) {
		return false, nil
	}
	if err := f.statusPersistence.SaveStatus(ctx, instanceID, &statusCopy); err != nil {
		return false, err
	}
	f.cachedRuns[instanceID] = &statusCopy
	return true, nil
}
