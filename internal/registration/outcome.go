package registration

import (
	"github.com/stacklok/dataset-registrar/internal/status"
)

// Outcome is the terminal result of a registration run
type Outcome string

const (
	// OutcomeCompleted means every definition of the working set was confirmed
	OutcomeCompleted Outcome = "completed"

	// OutcomeTimedOut means the budget ran out with definitions left
	OutcomeTimedOut Outcome = "timed_out"

	// OutcomeAborted means the run stopped on an unexpected defect or on shutdown
	OutcomeAborted Outcome = "aborted"
)

func (o Outcome) String() string {
	return string(o)
}

// Phase returns the run phase recorded for the outcome
func (o Outcome) Phase() status.RunPhase {
	switch o {
	case OutcomeCompleted:
		return status.RunPhaseCompleted
	case OutcomeTimedOut:
		return status.RunPhaseTimedOut
	default:
		return status.RunPhaseAborted
	}
}
