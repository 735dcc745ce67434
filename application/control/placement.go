package control

import (
	"context"
	"fmt"
	"time"

	"popbot/application/vision"
	"popbot/domain/gamemap"
	"popbot/domain/tower"
	"popbot/infrastructure/logging"
)

// Phase is the progress of a single placement.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseTargeting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseSelecting:
		return "Selecting"
	case PhaseTargeting:
		return "Targeting"
	case PhaseDone:
		return "Done"
	case PhaseFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// PlacementController places towers and heroes on the map, verifying
// both the shop selection and the placement click visually.
type PlacementController struct {
	verifier *vision.Verifier
	input    Input
	towers   *tower.Registry
	cfg      Config
	phase    Phase
}

// NewPlacementController creates a placement controller.
func NewPlacementController(verifier *vision.Verifier, input Input, towers *tower.Registry, cfg Config) *PlacementController {
	return &PlacementController{
		verifier: verifier,
		input:    input,
		towers:   towers,
		cfg:      cfg,
	}
}

// Phase returns the phase reached by the most recent placement.
func (c *PlacementController) Phase() Phase {
	return c.phase
}

// Place executes a buy action: select the tower from the shop, then
// click its planned position. The cursor is parked at the resting spot
// on every exit path. Selection failure is recoverable; targeting
// failure is fatal for the run.
func (c *PlacementController) Place(ctx context.Context, action gamemap.Action) error {
	if err := action.Validate(); err != nil {
		return &ValidationError{Step: action.Step, Err: err}
	}

	defer c.restCursor(ctx)

	log := logging.From(ctx)
	hotkey := c.towers.Hotkey(action.Target, c.cfg.MonkeyDefaultKey)

	c.phase = PhaseSelecting
	selectTower := func(ctx context.Context) error {
		return c.input.SendKey(ctx, hotkey)
	}
	ok, diff, err := c.verifier.RetryConfirm(ctx, selectTower, c.cfg.SelectionRegion, c.cfg.SelectionThreshold, c.cfg.Policy)
	if err != nil {
		c.phase = PhaseFailed
		return err
	}
	if !ok {
		c.phase = PhaseFailed
		return &SelectionError{Target: action.Target, Score: diff}
	}
	log.Debug("Tower selected", "target", action.Target, "hotkey", hotkey, "diff", diff)

	return c.target(ctx, action.Target, *action.Position)
}

// PlaceHero places the hero. Hero selection holds the hero key for the
// configured duration instead of tapping it.
func (c *PlacementController) PlaceHero(ctx context.Context, hero gamemap.Hero) error {
	defer c.restCursor(ctx)

	log := logging.From(ctx)

	c.phase = PhaseSelecting
	selectHero := func(ctx context.Context) error {
		if err := c.input.KeyDown(ctx, c.cfg.HeroKey); err != nil {
			return err
		}
		if !sleepHold(ctx, c.cfg) {
			// Release even when cancelled mid-hold.
			_ = c.input.KeyUp(ctx, c.cfg.HeroKey)
			return ctx.Err()
		}
		return c.input.KeyUp(ctx, c.cfg.HeroKey)
	}
	ok, diff, err := c.verifier.RetryConfirm(ctx, selectHero, c.cfg.SelectionRegion, c.cfg.SelectionThreshold, c.cfg.Policy)
	if err != nil {
		c.phase = PhaseFailed
		return err
	}
	if !ok {
		c.phase = PhaseFailed
		return &SelectionError{Target: hero.Name, Score: diff}
	}
	log.Debug("Hero selected", "hero", hero.Name, "diff", diff)

	return c.target(ctx, hero.Name, hero.Position)
}

// target clicks the planned position and confirms the entity landed by
// watching both placement side panels: a landed entity redraws one of
// them, which side depends on where it landed.
func (c *PlacementController) target(ctx context.Context, name string, pos gamemap.Position) error {
	c.phase = PhaseTargeting

	place := func(ctx context.Context) error {
		return c.input.Click(ctx, float64(pos.X), float64(pos.Y))
	}
	result, ok, err := c.verifier.TryTargeting(ctx, place, c.cfg.PlaceLeft, c.cfg.PlaceRight, c.cfg.TargetingThreshold, c.cfg.Policy)
	if err != nil {
		c.phase = PhaseFailed
		return err
	}
	if !ok {
		c.phase = PhaseFailed
		return &TargetingError{Target: name}
	}

	logging.From(ctx).Info("Placed entity",
		"target", name, "x", pos.X, "y", pos.Y, "diff", result.Score, "attempts", result.Attempts)
	c.phase = PhaseDone
	return nil
}

func sleepHold(ctx context.Context, cfg Config) bool {
	if cfg.HeroHold <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(cfg.HeroHold):
		return true
	}
}

func (c *PlacementController) restCursor(ctx context.Context) {
	if err := c.input.MoveTo(ctx, float64(c.cfg.Resting.X), float64(c.cfg.Resting.Y)); err != nil {
		logging.From(ctx).Debug("Failed to park cursor", "error", err)
	}
}
