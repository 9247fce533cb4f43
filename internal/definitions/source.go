package definitions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source provides the data set definitions known to the registrar
//
//go:generate mockgen -destination=mocks/mock_source.go -package=mocks github.com/stacklok/dataset-registrar/internal/definitions Source
type Source interface {
	// ListPendingDefinitions returns the definitions in their stored order.
	// Definitions marked LocalOnly are only included when includeLocalOnly is true.
	ListPendingDefinitions(ctx context.Context, includeLocalOnly bool) ([]DataSetDef, error)
}

// definitionFile is the on-disk layout read by FileSource
type definitionFile struct {
	DataSets []DataSetDef `yaml:"dataSets"`
}

// fileSource reads definitions from a YAML file on every call so edits are picked up
type fileSource struct {
	path string
}

// NewFileSource creates a Source backed by a YAML file
func NewFileSource(path string) (Source, error) {
	if path == "" {
		return nil, fmt.Errorf("definitions file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) && !filepath.IsLocal(cleanPath) {
		return nil, fmt.Errorf("definitions path is not local or contains invalid traversal: %s", path)
	}

	return &fileSource{path: cleanPath}, nil
}

func (f *fileSource) ListPendingDefinitions(_ context.Context, includeLocalOnly bool) ([]DataSetDef, error) {
	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("definitions file not found: %s", f.path)
		}
		return nil, fmt.Errorf("failed to read definitions file %s: %w", f.path, err)
	}

	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse definitions file %s: %w", f.path, err)
	}

	return filterLocalOnly(file.DataSets, includeLocalOnly), nil
}

// MemorySource is an in-memory Source, mainly useful for embedding and tests
type MemorySource struct {
	mu   sync.RWMutex
	defs []DataSetDef
}

// NewMemorySource creates a MemorySource holding the given definitions
func NewMemorySource(defs ...DataSetDef) *MemorySource {
	return &MemorySource{defs: slices.Clone(defs)}
}

// Set replaces the stored definitions
func (m *MemorySource) Set(defs ...DataSetDef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = slices.Clone(defs)
}

// ListPendingDefinitions returns a copy of the stored definitions
func (m *MemorySource) ListPendingDefinitions(_ context.Context, includeLocalOnly bool) ([]DataSetDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filterLocalOnly(m.defs, includeLocalOnly), nil
}

func filterLocalOnly(defs []DataSetDef, includeLocalOnly bool) []DataSetDef {
	result := make([]DataSetDef, 0, len(defs))
	for _, def := range defs {
		if def.LocalOnly && !includeLocalOnly {
			continue
		}
		result = append(result, def)
	}
	return result
}
