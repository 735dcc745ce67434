package event

import (
	"errors"
	"testing"

	"popbot/core/state"
)

func TestEvent_Names(t *testing.T) {
	tests := []struct {
		event    Event
		expected string
	}{
		{NewRunStarted("r1", "monkey_meadow", "easy", "standard"), "RunStarted"},
		{NewRunFinished("r1", StopReasonNormal, 8, nil), "RunFinished"},
		{NewRunStateChanged("r1", state.StateIdle, state.StateStarting), "RunStateChanged"},
		{NewCurrencyUpdated("r1", 650), "CurrencyUpdated"},
		{NewActionCompleted("r1", 1, "buy", "Dart Monkey 01"), "ActionCompleted"},
		{NewActionFailed("r1", 2, "upgrade", "Dart Monkey 01", false, errors.New("test")), "ActionFailed"},
		{NewUpgradeCommitted("r1", "Dart Monkey 01", "path_3", 1), "UpgradeCommitted"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.event.EventName(); got != tt.expected {
				t.Errorf("EventName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunEvent_RunID(t *testing.T) {
	tests := []struct {
		name     string
		event    RunEvent
		expected string
	}{
		{"RunStarted", NewRunStarted("run-123", "m", "easy", "standard"), "run-123"},
		{"RunFinished", NewRunFinished("run-456", StopReasonNormal, 0, nil), "run-456"},
		{"RunStateChanged", NewRunStateChanged("run-789", state.StateIdle, state.StateStarting), "run-789"},
		{"CurrencyUpdated", NewCurrencyUpdated("run-abc", 100), "run-abc"},
		{"ActionCompleted", NewActionCompleted("run-def", 1, "buy", "t"), "run-def"},
		{"ActionFailed", NewActionFailed("run-ghi", 1, "buy", "t", true, nil), "run-ghi"},
		{"UpgradeCommitted", NewUpgradeCommitted("run-jkl", "t", "path_1", 2), "run-jkl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.RunID(); got != tt.expected {
				t.Errorf("RunID() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStopReason_String(t *testing.T) {
	tests := []struct {
		reason   StopReason
		expected string
	}{
		{StopReasonNormal, "Normal"},
		{StopReasonManual, "Manual"},
		{StopReasonError, "Error"},
		{StopReasonBrowserStopped, "BrowserStopped"},
		{StopReason(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.reason.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunStarted_Fields(t *testing.T) {
	e := NewRunStarted("r1", "monkey_meadow", "easy", "standard")

	if e.MapName != "monkey_meadow" {
		t.Errorf("MapName = %v, want monkey_meadow", e.MapName)
	}
	if e.Difficulty != "easy" {
		t.Errorf("Difficulty = %v, want easy", e.Difficulty)
	}
}

func TestRunFinished_Fields(t *testing.T) {
	testErr := errors.New("test error")
	e := NewRunFinished("r1", StopReasonError, 3, testErr)

	if e.Reason != StopReasonError {
		t.Errorf("Reason = %v, want Error", e.Reason)
	}
	if e.StepsCompleted != 3 {
		t.Errorf("StepsCompleted = %v, want 3", e.StepsCompleted)
	}
	if e.Error != testErr {
		t.Errorf("Error = %v, want %v", e.Error, testErr)
	}
}

func TestRunStateChanged_States(t *testing.T) {
	e := NewRunStateChanged("r1", state.StatePrePlay, state.StatePlaying)

	if e.OldState != state.StatePrePlay {
		t.Errorf("OldState = %v, want PrePlay", e.OldState)
	}
	if e.NewState != state.StatePlaying {
		t.Errorf("NewState = %v, want Playing", e.NewState)
	}
}

func TestUpgradeCommitted_Fields(t *testing.T) {
	e := NewUpgradeCommitted("r1", "Dart Monkey 01", "path_3", 2)

	if e.Target != "Dart Monkey 01" {
		t.Errorf("Target = %v, want Dart Monkey 01", e.Target)
	}
	if e.Path != "path_3" {
		t.Errorf("Path = %v, want path_3", e.Path)
	}
	if e.Tier != 2 {
		t.Errorf("Tier = %v, want 2", e.Tier)
	}
}
