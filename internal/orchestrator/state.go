package orchestrator

// State is a state of the security check state machine.
//
//	Idle -> Locating -> Checking -> Succeeded -> Idle
//	           |           |
//	           +-----------+-----> Failed -> Idle
type State int

const (
	// StateIdle accepts a new check.
	StateIdle State = iota
	// StateLocating waits for a position fix.
	StateLocating
	// StateChecking waits for the risk-assessment service.
	StateChecking
	// StateSucceeded holds the result of the last check.
	StateSucceeded
	// StateFailed holds the error of the last check.
	StateFailed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocating:
		return "locating"
	case StateChecking:
		return "checking"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a check.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
