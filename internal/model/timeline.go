package model

import "time"

// RecordType is the nesting level of a timeline record within a run's
// execution tree.
type RecordType string

const (
	RecordStage RecordType = "Stage"
	RecordPhase RecordType = "Phase"
	RecordJob   RecordType = "Job"
	RecordTask  RecordType = "Task"
)

// LogRef points at the log the execution service stored for a record.
type LogRef struct {
	ID int
}

// Issue is a warning or error the execution service attached to a record.
type Issue struct {
	Type    string
	Message string
}

// TimelineRecord is one node of a run's execution tree. Records form a tree
// via ParentID; a record with no parent and type Stage is a root.
type TimelineRecord struct {
	ID         string
	ParentID   string
	Type       RecordType
	Name       string
	State      string
	Result     string
	Order      int
	StartTime  time.Time
	FinishTime time.Time
	Log        *LogRef
	Issues     []Issue
}

// Started reports whether the record carries a usable start timestamp.
func (r TimelineRecord) Started() bool {
	return !r.StartTime.IsZero()
}

// Duration returns the elapsed time between start and finish, or zero when
// either timestamp is missing.
func (r TimelineRecord) Duration() time.Duration {
	if r.StartTime.IsZero() || r.FinishTime.IsZero() {
		return 0
	}
	return r.FinishTime.Sub(r.StartTime)
}
