package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/dataset-registrar/internal/status"
	statusmocks "github.com/stacklok/dataset-registrar/internal/status/mocks"
)

func TestFileStateService_Initialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setupMocks func(*statusmocks.MockStatusPersistence)
		wantErr    bool
		wantPhases map[string]status.RunPhase
	}{
		{
			name: "interrupted runs are aborted",
			setupMocks: func(m *statusmocks.MockStatusPersistence) {
				m.EXPECT().LoadAllStatus(gomock.Any()).Return(map[string]*status.RunStatus{
					"instance1": {RunID: "r1", Phase: status.RunPhaseCompleted},
					"instance2": {RunID: "r2", Phase: status.RunPhaseRegistering, Pending: 3},
				}, nil)
				m.EXPECT().SaveStatus(gomock.Any(), "instance2", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, s *status.RunStatus) error {
						assert.Equal(t, status.RunPhaseAborted, s.Phase)
						assert.NotNil(t, s.FinishedAt)
						return nil
					})
			},
			wantPhases: map[string]status.RunPhase{
				"instance1": status.RunPhaseCompleted,
				"instance2": status.RunPhaseAborted,
			},
		},
		{
			name: "persist failure of corrected status is tolerated",
			setupMocks: func(m *statusmocks.MockStatusPersistence) {
				m.EXPECT().LoadAllStatus(gomock.Any()).Return(map[string]*status.RunStatus{
					"instance1": {RunID: "r1", Phase: status.RunPhaseRegistering},
				}, nil)
				m.EXPECT().SaveStatus(gomock.Any(), "instance1", gomock.Any()).Return(errors.New("disk full"))
			},
			wantPhases: map[string]status.RunPhase{
				"instance1": status.RunPhaseAborted,
			},
		},
		{
			name: "load failure",
			setupMocks: func(m *statusmocks.MockStatusPersistence) {
				m.EXPECT().LoadAllStatus(gomock.Any()).Return(nil, errors.New("permission denied"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockPersistence := statusmocks.NewMockStatusPersistence(ctrl)
			tt.setupMocks(mockPersistence)

			service := NewFileStateService(mockPersistence)
			err := service.Initialize(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			runs, err := service.ListRuns(context.Background())
			require.NoError(t, err)
			require.Len(t, runs, len(tt.wantPhases))
			for instanceID, phase := range tt.wantPhases {
				assert.Equal(t, phase, runs[instanceID].Phase, instanceID)
			}
		})
	}
}

func TestFileStateService_GetRun(t *testing.T) {
	t.Parallel()

	service := NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))
	ctx := context.Background()

	_, err := service.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	require.NoError(t, service.UpdateRun(ctx, "instance1", &status.RunStatus{RunID: "r1", Phase: status.RunPhaseRegistering}))

	run, err := service.GetRun(ctx, "instance1")
	require.NoError(t, err)
	assert.Equal(t, "r1", run.RunID)

	// Returned statuses are copies
	run.Phase = status.RunPhaseCompleted
	again, err := service.GetRun(ctx, "instance1")
	require.NoError(t, err)
	assert.Equal(t, status.RunPhaseRegistering, again.Phase)
}

func TestFileStateService_UpdateRunPersists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	started := time.Now()

	service := NewFileStateService(status.NewFileStatusPersistence(dir))
	require.NoError(t, service.UpdateRun(ctx, "instance1", &status.RunStatus{
		RunID:     "r1",
		Phase:     status.RunPhaseRegistering,
		Total:     2,
		Pending:   2,
		StartedAt: &started,
	}))

	// A fresh service over the same directory sees the interrupted run
	restarted := NewFileStateService(status.NewFileStatusPersistence(dir))
	require.NoError(t, restarted.Initialize(ctx))

	run, err := restarted.GetRun(ctx, "instance1")
	require.NoError(t, err)
	assert.Equal(t, status.RunPhaseAborted, run.Phase)
	assert.Equal(t, 2, run.Pending)
}

func TestFileStateService_UpdateRunAtomically(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing run", func(t *testing.T) {
		t.Parallel()
		service := NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))
		_, err := service.UpdateRunAtomically(ctx, "missing", func(*status.RunStatus) bool { return true })
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("modification is stored", func(t *testing.T) {
		t.Parallel()
		service := NewFileStateService(status.NewFileStatusPersistence(t.TempDir()))
		require.NoError(t, service.UpdateRun(ctx, "instance1", &status.RunStatus{RunID: "r1", Pending: 2}))

		updated, err := service.UpdateRunAtomically(ctx, "instance1", func(s *status.RunStatus) bool {
			s.Pending--
			s.Registered++
			return true
		})
		require.NoError(t, err)
		assert.True(t, updated)

		run, err := service.GetRun(ctx, "instance1")
		require.NoError(t, err)
		assert.Equal(t, 1, run.Pending)
		assert.Equal(t, 1, run.Registered)
	})

	t.Run("unmodified status is left alone", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockPersistence := statusmocks.NewMockStatusPersistence(ctrl)
		mockPersistence.EXPECT().SaveStatus(gomock.Any(), "instance1", gomock.Any()).Return(nil).Times(1)

		service := NewFileStateService(mockPersistence)
		require.NoError(t, service.UpdateRun(ctx, "instance1", &status.RunStatus{RunID: "r1"}))

		updated, err := service.UpdateRunAtomically(ctx, "instance1", func(s *status.RunStatus) bool {
			s.RunID = "ignored"
			return false
		})
		require.NoError(t, err)
		assert.False(t, updated)

		run, err := service.GetRun(ctx, "instance1")
		require.NoError(t, err)
		assert.Equal(t, "r1", run.RunID)
	})

	t.Run("save failure keeps cached status", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockPersistence := statusmocks.NewMockStatusPersistence(ctrl)
		gomock.InOrder(
			mockPersistence.EXPECT().SaveStatus(gomock.Any(), "instance1", gomock.Any()).Return(nil),
			mockPersistence.EXPECT().SaveStatus(gomock.Any(), "instance1", gomock.Any()).Return(errors.New("disk full")),
		)

		service := NewFileStateService(mockPersistence)
		require.NoError(t, service.UpdateRun(ctx, "instance1", &status.RunStatus{Phase: status.RunPhaseRegistering}))

		_, err := service.UpdateRunAtomically(ctx, "instance1", func(s *status.RunStatus) bool {
			s.Phase = status.RunPhaseCompleted
			return true
		})
		assert.Error(t, err)

		run, err := service.GetRun(ctx, "instance1")
		require.NoError(t, err)
		assert.Equal(t, status.RunPhaseRegistering, run.Phase)
	})
}
