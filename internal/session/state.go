package session

import "fmt"

// State is a position in the labeling workflow.
type State int

const (
	AwaitingISBN State = iota
	LookedUp
	NotFound
	Found
	Confirmed
	Stored
	Printed
)

func (s State) String() string {
	switch s {
	case AwaitingISBN:
		return "awaiting-isbn"
	case LookedUp:
		return "looked-up"
	case NotFound:
		return "not-found"
	case Found:
		return "found"
	case Confirmed:
		return "confirmed"
	case Stored:
		return "stored"
	case Printed:
		return "printed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the states reachable from each state. Every state may
// also return to AwaitingISBN when the iteration ends.
var transitions = map[State][]State{
	AwaitingISBN: {LookedUp},
	LookedUp:     {NotFound, Found},
	NotFound:     {Found},
	Found:        {Confirmed},
	Confirmed:    {Stored},
	Stored:       {Printed},
}

// CanTransition reports whether the workflow may move from one state to
// another.
func CanTransition(from, to State) bool {
	if to == AwaitingISBN {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
