package tts

import "fmt"

// StateType is the narration state of a playback session.
type StateType int

const (
	// StateIdle means nothing is being read. It is the initial state and the
	// state after a page finishes.
	StateIdle StateType = iota
	// StatePreparing means page text is being fetched and chunked.
	StatePreparing
	// StateSpeaking means an utterance is active or about to be dispatched.
	StateSpeaking
	// StatePaused means narration is suspended and can be resumed.
	StatePaused
	// StateStopped means the user stopped narration explicitly.
	StateStopped
	// StateError means extraction or synthesis failed.
	StateError
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateSpeaking:
		return "speaking"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsActive reports whether narration is under way, which is what makes page
// navigation continue reading on the new page.
func (s StateType) IsActive() bool {
	return s == StatePreparing || s == StateSpeaking || s == StatePaused
}

// StateMachine validates narration state transitions.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:      {StatePreparing, StateStopped},
			StatePreparing: {StateSpeaking, StateIdle, StateStopped, StateError},
			StateSpeaking:  {StateSpeaking, StatePaused, StatePreparing, StateIdle, StateStopped, StateError},
			StatePaused:    {StateSpeaking, StatePreparing, StateStopped, StateError},
			StateStopped:   {StatePreparing, StateIdle, StateStopped},
			StateError:     {StatePreparing, StateIdle, StateStopped},
		},
	}
}

// CanTransition reports whether moving to the given state is allowed.
func (sm *StateMachine) CanTransition(to StateType) bool {
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			return true
		}
	}
	return false
}

// Transition moves to the given state. A move the table does not allow
// leaves the state unchanged and returns an error wrapping
// ErrStateTransition.
func (sm *StateMachine) Transition(to StateType) error {
	if !sm.CanTransition(to) {
		return fmt.Errorf("%w: %s to %s", ErrStateTransition, sm.current, to)
	}
	sm.current = to
	return nil
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}
