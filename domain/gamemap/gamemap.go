// Package gamemap defines per-map play plans: which hero to pick, which
// towers to place where, and which upgrades to buy at which step.
package gamemap

import (
	"fmt"
	"time"
)

// ActionKind represents the kind of a plan action.
type ActionKind string

const (
	ActionBuy     ActionKind = "buy"
	ActionUpgrade ActionKind = "upgrade"
)

// PathKeys lists the valid upgrade path identifiers in order.
var PathKeys = []string{"path_1", "path_2", "path_3"}

// Position is a screen coordinate in CSS pixels.
type Position struct {
	X int
	Y int
}

// Action is one entry in a map's play plan.
type Action struct {
	// Step orders actions within the plan. Lower steps run first.
	Step int

	// Kind selects between placing a tower and upgrading one.
	Kind ActionKind

	// Target names the entity this action applies to. Placements may
	// carry a numeric suffix to disambiguate multiple copies of the
	// same tower ("Dart Monkey 01").
	Target string

	// Position is where to place the tower. Required for buys.
	Position *Position

	// Path is the upgrade path key ("path_1".."path_3"). Only set for
	// upgrades, and left empty when the source data was ambiguous.
	Path string

	// Tier is the upgrade tier to reach on Path, 1 through 5.
	Tier int
}

// Hero describes the hero pick for a map.
type Hero struct {
	Name     string
	Position Position
}

// Timing carries optional per-map overrides for action pacing. Zero
// values defer to the global configuration.
type Timing struct {
	PlacementDelay time.Duration
	UpgradeDelay   time.Duration
}

// MapConfig is a full play plan for one map, difficulty and mode.
type MapConfig struct {
	// Name is the unique map identifier.
	Name string

	// Difficulty is the map difficulty ("Easy", "Medium", "Hard").
	Difficulty string

	// Mode is the game mode ("Standard", "Impoppable", ...).
	Mode string

	// Hero is the optional hero pick placed before the run starts.
	Hero *Hero

	// PrePlay are actions performed before the first round begins.
	PrePlay []Action

	// Actions is the in-round plan, executed in step order as currency
	// allows.
	Actions []Action

	// Timing holds optional pacing overrides for this map.
	Timing Timing
}

// Validate checks that the action carries everything its kind needs.
// Buys require a target and a position. Upgrades require a target, a
// single unambiguous path key and a tier between 1 and 5.
func (a *Action) Validate() error {
	if a.Target == "" {
		return fmt.Errorf("action at step %d has no target", a.Step)
	}

	switch a.Kind {
	case ActionBuy:
		if a.Position == nil {
			return fmt.Errorf("buy %q at step %d has no position", a.Target, a.Step)
		}
	case ActionUpgrade:
		if !validPath(a.Path) {
			return fmt.Errorf("upgrade %q at step %d has no unambiguous path", a.Target, a.Step)
		}
		if a.Tier < 1 || a.Tier > 5 {
			return fmt.Errorf("upgrade %q at step %d has tier %d outside [1,5]", a.Target, a.Step, a.Tier)
		}
	default:
		return fmt.Errorf("action at step %d has unknown kind %q", a.Step, a.Kind)
	}

	return nil
}

func validPath(path string) bool {
	for _, key := range PathKeys {
		if path == key {
			return true
		}
	}
	return false
}

// BuyActions returns the placement actions of the in-round plan.
func (m *MapConfig) BuyActions() []Action {
	return filterKind(m.Actions, ActionBuy)
}

// UpgradeActions returns the upgrade actions of the in-round plan.
func (m *MapConfig) UpgradeActions() []Action {
	return filterKind(m.Actions, ActionUpgrade)
}

func filterKind(actions []Action, kind ActionKind) []Action {
	var out []Action
	for _, a := range actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// PlacementPosition returns the planned position for a named placement,
// searching pre-play actions first and then the in-round plan. The
// second return is false when the entity was never placed by this plan.
func (m *MapConfig) PlacementPosition(target string) (Position, bool) {
	for _, actions := range [][]Action{m.PrePlay, m.Actions} {
		for _, a := range actions {
			if a.Kind == ActionBuy && a.Target == target && a.Position != nil {
				return *a.Position, true
			}
		}
	}
	return Position{}, false
}
