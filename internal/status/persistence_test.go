package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInstanceID = "kie-server-1"

func TestFileStatusPersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	persistence := NewFileStatusPersistence(tmpDir)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	testStatus := &RunStatus{
		RunID:            "run-1",
		ServerInstanceID: testInstanceID,
		ServerTemplateID: "kie",
		Phase:            RunPhaseCompleted,
		Message:          "All definitions registered",
		Total:            3,
		Registered:       3,
		Passes:           2,
		Endpoint:         "http://kie-1:8080",
		StartedAt:        &started,
		FinishedAt:       &started,
	}

	require.NoError(t, persistence.SaveStatus(ctx, testInstanceID, testStatus))

	_, err := os.Stat(filepath.Join(tmpDir, testInstanceID, StatusFileName))
	require.NoError(t, err)

	loaded, err := persistence.LoadStatus(ctx, testInstanceID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, testStatus.RunID, loaded.RunID)
	assert.Equal(t, testStatus.Phase, loaded.Phase)
	assert.Equal(t, testStatus.Registered, loaded.Registered)
	assert.Equal(t, testStatus.Passes, loaded.Passes)
	assert.True(t, started.Equal(*loaded.StartedAt))
}

func TestFileStatusPersistence_LoadNonExistent(t *testing.T) {
	t.Parallel()

	persistence := NewFileStatusPersistence(t.TempDir())

	loaded, err := persistence.LoadStatus(context.Background(), testInstanceID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStatusPersistence_InvalidInstanceID(t *testing.T) {
	t.Parallel()

	persistence := NewFileStatusPersistence(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", "a/b", `a\b`} {
		err := persistence.SaveStatus(ctx, id, &RunStatus{})
		assert.ErrorIs(t, err, ErrInvalidInstanceID, "id %q", id)

		_, err = persistence.LoadStatus(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidInstanceID, "id %q", id)
	}
}

func TestFileStatusPersistence_AtomicWrite(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	persistence := NewFileStatusPersistence(tmpDir)

	require.NoError(t, persistence.SaveStatus(context.Background(), testInstanceID, &RunStatus{Phase: RunPhaseRegistering}))

	tempPath := filepath.Join(tmpDir, testInstanceID, StatusFileName) + ".tmp"
	_, err := os.Stat(tempPath)
	require.True(t, os.IsNotExist(err), "Temporary file should not exist after save")
}

func TestFileStatusPersistence_LoadAllStatus(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	persistence := NewFileStatusPersistence(tmpDir)
	ctx := context.Background()

	require.NoError(t, persistence.SaveStatus(ctx, "instance1", &RunStatus{Phase: RunPhaseCompleted, Registered: 5}))
	require.NoError(t, persistence.SaveStatus(ctx, "instance2", &RunStatus{Phase: RunPhaseTimedOut, Pending: 2}))

	// A directory holding invalid JSON is skipped
	invalidDir := filepath.Join(tmpDir, "broken")
	require.NoError(t, os.MkdirAll(invalidDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(invalidDir, StatusFileName), []byte("{invalid json}"), 0600))

	// So is a directory without a status file
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "empty"), 0750))

	result, err := persistence.LoadAllStatus(ctx)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, RunPhaseCompleted, result["instance1"].Phase)
	assert.Equal(t, 5, result["instance1"].Registered)
	assert.Equal(t, RunPhaseTimedOut, result["instance2"].Phase)
	assert.Equal(t, 2, result["instance2"].Pending)
}

func TestFileStatusPersistence_LoadAllStatus_NonExistentDirectory(t *testing.T) {
	t.Parallel()

	persistence := NewFileStatusPersistence(filepath.Join(t.TempDir(), "nonexistent"))

	result, err := persistence.LoadAllStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRunPhase_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, RunPhaseRegistering.IsTerminal())
	assert.True(t, RunPhaseCompleted.IsTerminal())
	assert.True(t, RunPhaseTimedOut.IsTerminal())
	assert.True(t, RunPhaseAborted.IsTerminal())
}
