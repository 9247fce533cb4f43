// Package status provides registration run status tracking and persistence.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// ErrInvalidInstanceID is returned for instance ids that cannot name a status directory
var ErrInvalidInstanceID = errors.New("invalid server instance id")

// StatusPersistence defines the interface for run status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the run status of a server instance
	SaveStatus(ctx context.Context, instanceID string, status *RunStatus) error

	// LoadStatus loads the run status of a server instance.
	// Returns nil without error if nothing was saved yet.
	LoadStatus(ctx context.Context, instanceID string) (*RunStatus, error)

	// LoadAllStatus loads the run status of every server instance
	LoadAllStatus(ctx context.Context) (map[string]*RunStatus, error)
}

// fileStatusPersistence implements StatusPersistence using local filesystem
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence.
// Every server instance gets its own directory below basePath.
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

func (f *fileStatusPersistence) statusPath(instanceID string) (string, error) {
	if instanceID == "" || strings.ContainsAny(instanceID, `/\`) || !filepath.IsLocal(instanceID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidInstanceID, instanceID)
	}
	return filepath.Join(f.basePath, instanceID, StatusFileName), nil
}

// SaveStatus writes the status to a temporary file and renames it into place
func (f *fileStatusPersistence) SaveStatus(_ context.Context, instanceID string, status *RunStatus) error {
	filePath, err := f.statusPath(instanceID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create status directory for instance '%s': %w", instanceID, err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data for instance '%s': %w", instanceID, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for instance '%s': %w", instanceID, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for instance '%s': %w", instanceID, err)
	}

	return nil
}

func (f *fileStatusPersistence) LoadStatus(_ context.Context, instanceID string) (*RunStatus, error) {
	filePath, err := f.statusPath(instanceID)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- instanceID is checked to be a single local path element
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read status file for instance '%s': %w", instanceID, err)
	}

	var status RunStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data for instance '%s': %w", instanceID, err)
	}

	return &status, nil
}

// LoadAllStatus skips instances whose status cannot be read
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*RunStatus, error) {
	result := make(map[string]*RunStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		instanceID := entry.Name()
		status, err := f.LoadStatus(ctx, instanceID)
		if err != nil || status == nil {
			continue
		}

		result[instanceID] = status
	}

	return result, nil
}
