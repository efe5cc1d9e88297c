package applications

import "fmt"

// InvalidTransitionError is returned when the lifecycle table has no edge
// from the current status to the requested one.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("applications: cannot move from %s to %s", e.From, e.To)
}

// Nothing may re-enter pending and terminal states have no outgoing edges.
var allowedTransitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusProcessing: {},
		StatusCompleted:  {},
		StatusRejected:   {},
	},
	StatusProcessing: {
		StatusCompleted: {},
		StatusRejected:  {},
	},
}

// CheckTransition validates a move between two known states. Re-applying
// the current status is accepted; callers treat it as a no-op.
func CheckTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if _, ok := allowedTransitions[from][to]; ok {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to}
}

// NextStatuses lists the states reachable from s in one step.
func NextStatuses(s Status) []Status {
	if s.Terminal() {
		return nil
	}
	var out []Status
	for _, candidate := range Statuses() {
		if _, ok := allowedTransitions[s][candidate]; ok {
			out = append(out, candidate)
		}
	}
	return out
}
