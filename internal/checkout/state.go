package checkout

import "fmt"

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StatePersisting State = "persisting"
	StateNotifying  State = "notifying"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

type Event string

const (
	EventSubmit        Event = "submit"
	EventValidated     Event = "validated"
	EventRejected      Event = "rejected"
	EventPersisted     Event = "persisted"
	EventPersistFailed Event = "persist_failed"
	EventNotified      Event = "notified"
)

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventSubmit: StateValidating,
	},
	StateValidating: {
		EventValidated: StatePersisting,
		EventRejected:  StateFailed,
	},
	StatePersisting: {
		EventPersisted:     StateNotifying,
		EventPersistFailed: StateFailed,
	},
	StateNotifying: {
		EventNotified: StateSucceeded,
	},
}

// Transition returns the state reached from s on e.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, s, e)
	}
	return next, nil
}
