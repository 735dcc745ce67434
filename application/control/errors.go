// Package control executes plan actions against the game: tower
// placement, entity upgrades and step scheduling. Every input is
// verified visually before it is considered applied.
package control

import (
	"errors"
	"fmt"
)

// SelectionError reports that pressing a tower's hotkey never disturbed
// the selection region. Recoverable: the step can be retried on a later
// pass.
type SelectionError struct {
	Target string
	Score  float64
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selecting %q was not confirmed (diff %.1f%%)", e.Target, e.Score)
}

// TargetingError reports that clicking a placement position never
// produced a visible change. Fatal for the run: the screen no longer
// matches the plan's assumptions.
type TargetingError struct {
	Target string
	Score  float64
}

func (e *TargetingError) Error() string {
	return fmt.Sprintf("placing %q was not confirmed (diff %.1f%%)", e.Target, e.Score)
}

// EntityTargetError reports that clicking an entity's recorded position
// never opened its menu. Fatal: the entity is not where the plan says.
type EntityTargetError struct {
	Target string
}

func (e *EntityTargetError) Error() string {
	return fmt.Sprintf("could not open menu for %q", e.Target)
}

// UpgradeVerifyError reports that an upgrade purchase was never
// visually confirmed. Recoverable: committed state is untouched and the
// step stays pending.
type UpgradeVerifyError struct {
	Target string
	Path   string
	Tier   int
	Score  float64
}

func (e *UpgradeVerifyError) Error() string {
	return fmt.Sprintf("upgrade %s tier %d on %q was not confirmed (diff %.1f%%)", e.Path, e.Tier, e.Target, e.Score)
}

// ValidationError reports a structurally invalid plan action. Never
// retried: the runner retires the step.
type ValidationError struct {
	Step int
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action at step %d: %v", e.Step, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether an action error should end the run instead of
// leaving the step pending for a later pass.
func IsFatal(err error) bool {
	var targetErr *TargetingError
	var entityErr *EntityTargetError
	return errors.As(err, &targetErr) || errors.As(err, &entityErr)
}
