package event

// RunStarted is published when a run starts successfully.
type RunStarted struct {
	baseRunEvent
	MapName    string
	Difficulty string
	Mode       string
}

func NewRunStarted(runID, mapName, difficulty, mode string) *RunStarted {
	return &RunStarted{
		baseRunEvent: baseRunEvent{runID: runID},
		MapName:      mapName,
		Difficulty:   difficulty,
		Mode:         mode,
	}
}

func (e *RunStarted) EventName() string {
	return "RunStarted"
}

// StopReason indicates why a run stopped.
type StopReason int

const (
	// StopReasonNormal indicates the plan completed normally.
	StopReasonNormal StopReason = iota
	// StopReasonManual indicates the run was cancelled by the user.
	StopReasonManual
	// StopReasonError indicates the run stopped due to an error.
	StopReasonError
	// StopReasonBrowserStopped indicates the run stopped because the browser was stopped.
	StopReasonBrowserStopped
)

func (r StopReason) String() string {
	switch r {
	case StopReasonNormal:
		return "Normal"
	case StopReasonManual:
		return "Manual"
	case StopReasonError:
		return "Error"
	case StopReasonBrowserStopped:
		return "BrowserStopped"
	default:
		return "Unknown"
	}
}

// RunFinished is published when a run stops.
type RunFinished struct {
	baseRunEvent
	Reason         StopReason
	StepsCompleted int
	Error          error // Non-nil if Reason is StopReasonError
}

func NewRunFinished(runID string, reason StopReason, stepsCompleted int, err error) *RunFinished {
	return &RunFinished{
		baseRunEvent:   baseRunEvent{runID: runID},
		Reason:         reason,
		StepsCompleted: stepsCompleted,
		Error:          err,
	}
}

func (e *RunFinished) EventName() string {
	return "RunFinished"
}

// CurrencyUpdated is published when the currency reader sees a new value.
type CurrencyUpdated struct {
	baseRunEvent
	Amount int
}

func NewCurrencyUpdated(runID string, amount int) *CurrencyUpdated {
	return &CurrencyUpdated{
		baseRunEvent: baseRunEvent{runID: runID},
		Amount:       amount,
	}
}

func (e *CurrencyUpdated) EventName() string {
	return "CurrencyUpdated"
}
