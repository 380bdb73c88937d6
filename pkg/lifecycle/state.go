package lifecycle

// State represents the process-wide lifecycle state.
type State int

const (
	StateStarting State = iota
	StateInitializing
	StateActive
	StateFailed
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateInitializing:
		return "Initializing"
	case StateActive:
		return "Active"
	case StateFailed:
		return "Failed"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// CanTransitionTo reports whether next is a legal successor of s in the
// fixed transition graph. StateStopped is terminal: nothing succeeds it.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateStarting:
		return next == StateInitializing
	case StateInitializing:
		return next == StateActive || next == StateFailed
	case StateActive, StateFailed:
		return next == StateStopping
	case StateStopping:
		return next == StateStopped
	case StateStopped:
		return false
	default:
		return false
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateStopped
}
