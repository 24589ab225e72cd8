package tts

import (
	"errors"
	"testing"
)

func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state StateType
		want  string
	}{
		{StateIdle, "idle"},
		{StatePreparing, "preparing"},
		{StateSpeaking, "speaking"},
		{StatePaused, "paused"},
		{StateStopped, "stopped"},
		{StateError, "error"},
		{StateType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("StateType(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateIsActive(t *testing.T) {
	active := map[StateType]bool{
		StatePreparing: true,
		StateSpeaking:  true,
		StatePaused:    true,
	}
	for _, s := range []StateType{StateIdle, StatePreparing, StateSpeaking, StatePaused, StateStopped, StateError} {
		if got := s.IsActive(); got != active[s] {
			t.Errorf("%s.IsActive() = %v, want %v", s, got, active[s])
		}
	}
}

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []StateType
		ok   bool
	}{
		{"play to end", []StateType{StatePreparing, StateSpeaking, StateSpeaking, StateIdle}, true},
		{"pause and resume", []StateType{StatePreparing, StateSpeaking, StatePaused, StateSpeaking}, true},
		{"stop while paused", []StateType{StatePreparing, StateSpeaking, StatePaused, StateStopped}, true},
		{"error then retry", []StateType{StatePreparing, StateError, StatePreparing}, true},
		{"idle cannot speak", []StateType{StateSpeaking}, false},
		{"idle cannot pause", []StateType{StatePaused}, false},
		{"preparing cannot pause", []StateType{StatePreparing, StatePaused}, false},
		{"stopped cannot pause", []StateType{StateStopped, StatePaused}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			ok := true
			for _, s := range tt.path {
				if sm.Transition(s) != nil {
					ok = false
					break
				}
			}
			if ok != tt.ok {
				t.Errorf("path %v: ok = %v, want %v", tt.path, ok, tt.ok)
			}
		})
	}
}

func TestStateMachineRejectedTransition(t *testing.T) {
	sm := NewStateMachine()
	if err := sm.Transition(StatePreparing); err != nil {
		t.Fatalf("Idle -> Preparing: %v", err)
	}

	err := sm.Transition(StatePaused)
	if !errors.Is(err, ErrStateTransition) {
		t.Errorf("Preparing -> Paused error = %v, want ErrStateTransition", err)
	}
	if sm.Current() != StatePreparing {
		t.Errorf("Current() = %s, want preparing", sm.Current())
	}
}
