package event

// ActionCompleted is published when a plan step is executed and verified.
type ActionCompleted struct {
	baseRunEvent
	Step   int
	Kind   string
	Target string
}

func NewActionCompleted(runID string, step int, kind, target string) *ActionCompleted {
	return &ActionCompleted{
		baseRunEvent: baseRunEvent{runID: runID},
		Step:         step,
		Kind:         kind,
		Target:       target,
	}
}

func (e *ActionCompleted) EventName() string {
	return "ActionCompleted"
}

// ActionFailed is published when a plan step fails after exhausting
// its retries or is rejected by validation.
type ActionFailed struct {
	baseRunEvent
	Step   int
	Kind   string
	Target string
	Fatal  bool
	Error  error
}

func NewActionFailed(runID string, step int, kind, target string, fatal bool, err error) *ActionFailed {
	return &ActionFailed{
		baseRunEvent: baseRunEvent{runID: runID},
		Step:         step,
		Kind:         kind,
		Target:       target,
		Fatal:        fatal,
		Error:        err,
	}
}

func (e *ActionFailed) EventName() string {
	return "ActionFailed"
}

// UpgradeCommitted is published when an upgrade tier is visually
// confirmed and recorded against the entity's state.
type UpgradeCommitted struct {
	baseRunEvent
	Target string
	Path   string
	Tier   int
}

func NewUpgradeCommitted(runID, target, path string, tier int) *UpgradeCommitted {
	return &UpgradeCommitted{
		baseRunEvent: baseRunEvent{runID: runID},
		Target:       target,
		Path:         path,
		Tier:         tier,
	}
}

func (e *UpgradeCommitted) EventName() string {
	return "UpgradeCommitted"
}
