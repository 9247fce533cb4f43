package registration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/registration"
)

func def(name string) definitions.PendingDefinition {
	return definitions.PendingDefinition{
		Name:       name,
		Source:     "${org.kie.server.persistence.ds}",
		Expression: "select * from " + name,
		Target:     definitions.DefaultTarget,
	}
}

func TestWorkingSet_OrderAndUniqueness(t *testing.T) {
	t.Parallel()

	first := def("a")
	dup := def("a")
	dup.Expression = "select 2"

	ws := registration.NewWorkingSet(first, def("b"), dup, def("c"))
	assert.Equal(t, 3, ws.Len())
	assert.Equal(t, []string{"a", "b", "c"}, ws.Names())
	assert.Equal(t, first, ws.Snapshot()[0], "first definition of a name wins")
}

func TestWorkingSet_RemoveIsIrrevocable(t *testing.T) {
	t.Parallel()

	ws := registration.NewWorkingSet(def("a"), def("b"), def("c"))

	assert.Equal(t, 2, ws.Remove("a", "c", "missing"))
	assert.Equal(t, []string{"b"}, ws.Names())

	assert.False(t, ws.Add(def("a")), "removed names are never re-admitted")
	assert.False(t, ws.Add(def("b")), "present names are not duplicated")
	assert.True(t, ws.Add(def("d")))
	assert.Equal(t, []string{"b", "d"}, ws.Names())

	assert.Zero(t, ws.Remove("a"))
}

func TestWorkingSet_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	ws := registration.NewWorkingSet(def("a"), def("b"))
	snapshot := ws.Snapshot()

	ws.Remove("a")
	assert.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].Name)

	snapshot[1].Name = "mutated"
	assert.Equal(t, []string{"b"}, ws.Names())
}

func TestOutcome_Phase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Completed", string(registration.OutcomeCompleted.Phase()))
	assert.Equal(t, "TimedOut", string(registration.OutcomeTimedOut.Phase()))
	assert.Equal(t, "Aborted", string(registration.OutcomeAborted.Phase()))
	assert.Equal(t, "timed_out", registration.OutcomeTimedOut.String())
}
