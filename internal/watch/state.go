package watch

// State is the lifecycle phase of a polling session.
type State int

const (
	// StateIdle means the session exists but no polling loop is running.
	StateIdle State = iota
	// StatePolling means the refresh loop is live.
	StatePolling
	// StateTerminal means polling has stopped permanently, either because
	// the run completed or because a fetch failed.
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateTerminal:
		return "terminal"
	default:
		return "invalid"
	}
}
