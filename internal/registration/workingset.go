package registration

import (
	"sync"

	"github.com/stacklok/dataset-registrar/internal/definitions"
)

// WorkingSet holds the definitions of one run that still await confirmation.
// It only ever shrinks: a removed name is never admitted again.
type WorkingSet struct {
	mu      sync.Mutex
	items   []definitions.PendingDefinition
	present map[string]struct{}
	removed map[string]struct{}
}

// NewWorkingSet creates a working set in the given order. Later duplicates of a name are dropped.
func NewWorkingSet(defs ...definitions.PendingDefinition) *WorkingSet {
	ws := &WorkingSet{
		present: make(map[string]struct{}, len(defs)),
		removed: make(map[string]struct{}),
	}
	for _, def := range defs {
		ws.add(def)
	}
	return ws
}

func (w *WorkingSet) add(def definitions.PendingDefinition) bool {
	if _, ok := w.present[def.Name]; ok {
		return false
	}
	if _, ok := w.removed[def.Name]; ok {
		return false
	}
	w.present[def.Name] = struct{}{}
	w.items = append(w.items, def)
	return true
}

// Add appends a definition unless its name is present or was removed before
func (w *WorkingSet) Add(def definitions.PendingDefinition) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.add(def)
}

// Remove drops the named definitions and returns how many were present
func (w *WorkingSet) Remove(names ...string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := w.present[name]; ok {
			drop[name] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := make([]definitions.PendingDefinition, 0, len(w.items)-len(drop))
	for _, item := range w.items {
		if _, ok := drop[item.Name]; ok {
			delete(w.present, item.Name)
			w.removed[item.Name] = struct{}{}
			continue
		}
		kept = append(kept, item)
	}
	w.items = kept
	return len(drop)
}

// Snapshot returns a copy of the pending definitions in order
func (w *WorkingSet) Snapshot() []definitions.PendingDefinition {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := make([]definitions.PendingDefinition, len(w.items))
	copy(snapshot, w.items)
	return snapshot
}

// Len returns the number of pending definitions
func (w *WorkingSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Names returns the names of the pending definitions in order
func (w *WorkingSet) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	names := make([]string, 0, len(w.items))
	for _, item := range w.items {
		names = append(names, item.Name)
	}
	return names
}
