package auto

// State is one phase of the control loop
type State string

const (
	StateIdle          State = "idle"
	StatePlanning      State = "planning"
	StateExecuting     State = "executing"
	StateScoring       State = "scoring"
	StateDeciding      State = "deciding"
	StateCompleted     State = "completed"
	StateAwaitingInput State = "awaiting-input"
	StateFailed        State = "failed"
)

// validTransitions is the full transition table. Terminal states have no
// entry: nothing leaves them. Failed is reachable from every non-terminal
// state because any uncaught fault aborts the run.
var validTransitions = map[State][]State{
	StateIdle:      {StatePlanning, StateFailed},
	StatePlanning:  {StateExecuting, StateFailed},
	StateExecuting: {StateScoring, StateFailed},
	StateScoring:   {StateDeciding, StateFailed},
	StateDeciding:  {StateExecuting, StateCompleted, StateAwaitingInput, StateFailed},
}

// Terminal reports whether a run in this state is over. Awaiting-input is
// terminal for this run; a new run seeded with additional input resumes it.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateAwaitingInput, StateFailed:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the transition table allows from → to.
func CanTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
