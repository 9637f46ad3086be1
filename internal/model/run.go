package model

import "time"

// RunStatus is the top-level state of a pipeline run as reported by the
// execution service.
type RunStatus string

const (
	StatusNotStarted RunStatus = "notStarted"
	StatusInProgress RunStatus = "inProgress"
	StatusCompleted  RunStatus = "completed"
	StatusCanceling  RunStatus = "cancelling"
	StatusUnknown    RunStatus = "unknown"
)

// Terminal reports whether no further progress is expected for the run.
// Polling sessions stop permanently once a run reaches a terminal status.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted
}

// Run is the metadata of a single pipeline run.
type Run struct {
	ID         string
	Name       string
	PipelineID string
	Status     RunStatus
	Result     string
	StartTime  time.Time
	FinishTime time.Time
}
