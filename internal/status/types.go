package status

import "time"

// RunPhase represents the current phase of a registration run
type RunPhase string

const (
	// RunPhaseRegistering means the run is still pushing definitions
	RunPhaseRegistering RunPhase = "Registering"

	// RunPhaseCompleted means every pending definition was registered
	RunPhaseCompleted RunPhase = "Completed"

	// RunPhaseTimedOut means the retry budget ran out with definitions left
	RunPhaseTimedOut RunPhase = "TimedOut"

	// RunPhaseAborted means the run stopped on a defect, on shutdown, or was interrupted
	RunPhaseAborted RunPhase = "Aborted"
)

// IsTerminal reports whether no further updates are expected for a run in this phase
func (p RunPhase) IsTerminal() bool {
	return p == RunPhaseCompleted || p == RunPhaseTimedOut || p == RunPhaseAborted
}

// RunStatus represents the latest registration run for one server instance
type RunStatus struct {
	// RunID identifies the run
	RunID string `json:"runId"`

	// ServerInstanceID is the instance the definitions are registered for
	ServerInstanceID string `json:"serverInstanceId"`

	// ServerTemplateID is the template whose endpoints receive the definitions
	ServerTemplateID string `json:"serverTemplateId"`

	// Phase is the current run phase
	Phase RunPhase `json:"phase"`

	// Message provides additional information about the run
	Message string `json:"message,omitempty"`

	// Total is the size of the working set when the run started
	Total int `json:"total"`

	// Pending is the number of definitions not yet confirmed
	Pending int `json:"pending"`

	// Registered is the number of definitions confirmed so far
	Registered int `json:"registered"`

	// Passes is the number of passes over the working set
	Passes int `json:"passes"`

	// Endpoint is the administrative endpoint used by the last pass
	Endpoint string `json:"endpoint,omitempty"`

	// StartedAt is when the run was scheduled
	StartedAt *time.Time `json:"startedAt,omitempty"`

	// FinishedAt is when the run reached a terminal phase
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
