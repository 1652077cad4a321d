// Package fsm defines the daemon lifecycle states and their transitions.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "idle"
	StateExecuting State = "executing"
	StateStopping  State = "stopping"
)

const (
	EventBegin Event = "begin"
	EventDone  Event = "done"
	EventStop  Event = "stop"
)

// Transition returns the state after event. A stop requested while a series
// runs lets the series finish; the daemon stays stopping afterwards.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventBegin:
			return StateExecuting, nil
		case EventStop:
			return StateStopping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateExecuting:
		switch event {
		case EventDone:
			return StateIdle, nil
		case EventStop:
			return StateStopping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopping:
		switch event {
		case EventDone, EventStop:
			return StateStopping, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
