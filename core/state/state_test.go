package state

import "testing"

func TestRunState_String(t *testing.T) {
	tests := []struct {
		state    RunState
		expected string
	}{
		{StateIdle, "Idle"},
		{StateStarting, "Starting"},
		{StatePrePlay, "PrePlay"},
		{StatePlaying, "Playing"},
		{StateStopping, "Stopping"},
		{StateStopped, "Stopped"},
		{RunState(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("RunState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     RunState
		to       RunState
		expected bool
	}{
		// Valid transitions from Idle
		{"Idle -> Starting", StateIdle, StateStarting, true},
		{"Idle -> Playing (invalid)", StateIdle, StatePlaying, false},

		// Valid transitions from Starting
		{"Starting -> PrePlay", StateStarting, StatePrePlay, true},
		{"Starting -> Stopping", StateStarting, StateStopping, true},
		{"Starting -> Stopped", StateStarting, StateStopped, true},
		{"Starting -> Playing (invalid)", StateStarting, StatePlaying, false},

		// Valid transitions from PrePlay
		{"PrePlay -> Playing", StatePrePlay, StatePlaying, true},
		{"PrePlay -> Stopping", StatePrePlay, StateStopping, true},
		{"PrePlay -> Idle (invalid)", StatePrePlay, StateIdle, false},

		// Valid transitions from Playing
		{"Playing -> Stopping", StatePlaying, StateStopping, true},
		{"Playing -> PrePlay (invalid)", StatePlaying, StatePrePlay, false},

		// Valid transitions from Stopping
		{"Stopping -> Stopped", StateStopping, StateStopped, true},
		{"Stopping -> Playing (invalid)", StateStopping, StatePlaying, false},

		// Stopped is terminal
		{"Stopped -> Idle (invalid)", StateStopped, StateIdle, false},
		{"Stopped -> Starting (invalid)", StateStopped, StateStarting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    RunState
		expected bool
	}{
		{StateIdle, false},
		{StateStarting, false},
		{StatePrePlay, false},
		{StatePlaying, false},
		{StateStopping, false},
		{StateStopped, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunState_IsActive(t *testing.T) {
	tests := []struct {
		state    RunState
		expected bool
	}{
		{StateIdle, false},
		{StateStarting, true},
		{StatePrePlay, true},
		{StatePlaying, true},
		{StateStopping, true},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsActive(); got != tt.expected {
				t.Errorf("IsActive() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunState_CanAcceptInput(t *testing.T) {
	tests := []struct {
		state    RunState
		expected bool
	}{
		{StateIdle, false},
		{StateStarting, false},
		{StatePrePlay, true},
		{StatePlaying, true},
		{StateStopping, false},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.CanAcceptInput(); got != tt.expected {
				t.Errorf("CanAcceptInput() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTransitionError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransitionError
		expected string
	}{
		{
			"with reason",
			NewTransitionError(StateIdle, StatePlaying, "not allowed"),
			"invalid state transition from Idle to Playing: not allowed",
		},
		{
			"without reason",
			NewTransitionError(StateIdle, StatePlaying, ""),
			"invalid state transition from Idle to Playing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}
