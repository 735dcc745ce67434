package control

import (
	"context"
	"fmt"

	"popbot/application/vision"
	"popbot/domain/gamemap"
	"popbot/infrastructure/logging"
)

// UpgradeController buys upgrades one tier at a time. A tier is
// committed to the upgrade state only after the purchase was visually
// confirmed, so the state never runs ahead of the game.
type UpgradeController struct {
	verifier *vision.Verifier
	input    Input
	state    *UpgradeState
	cfg      Config
}

// NewUpgradeController creates an upgrade controller over the given
// shared upgrade state.
func NewUpgradeController(verifier *vision.Verifier, input Input, state *UpgradeState, cfg Config) *UpgradeController {
	return &UpgradeController{
		verifier: verifier,
		input:    input,
		state:    state,
		cfg:      cfg,
	}
}

// State returns the shared upgrade state.
func (c *UpgradeController) State() *UpgradeState {
	return c.state
}

// Execute advances the entity toward the requested tier by at most one
// tier. It returns true when the committed tier has reached the
// requested tier, which for a request N tiers ahead happens on the Nth
// successful call. A request at or below the committed tier is already
// satisfied and returns true without touching the game.
//
// The entity menu is opened by clicking the recorded position and
// watching both menu regions; the purchase is confirmed over the region
// that reacted, against its pre-targeting capture. The cursor is parked
// and the menu dismissed on every exit path.
func (c *UpgradeController) Execute(ctx context.Context, action gamemap.Action, pos gamemap.Position) (bool, error) {
	if err := action.Validate(); err != nil {
		return false, &ValidationError{Step: action.Step, Err: err}
	}

	current := c.state.Tier(action.Target, action.Path)
	if current >= action.Tier {
		// Committed state never regresses; a lower request is done.
		return true, nil
	}

	defer c.restCursor(ctx)
	defer c.closeMenu(ctx)

	log := logging.From(ctx)

	openMenu := func(ctx context.Context) error {
		return c.input.Click(ctx, float64(pos.X), float64(pos.Y))
	}
	result, ok, err := c.verifier.TryTargeting(ctx, openMenu, c.cfg.MenuLeft, c.cfg.MenuRight, c.cfg.TargetingThreshold, c.cfg.Policy)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, &EntityTargetError{Target: action.Target}
	}
	log.Debug("Entity menu opened",
		"target", action.Target, "attempts", result.Attempts, "diff", result.Score)

	pathKey, found := c.cfg.PathKeys[action.Path]
	if !found {
		return false, &ValidationError{Step: action.Step, Err: fmt.Errorf("no key bound to %s", action.Path)}
	}

	next := current + 1
	buy := func(ctx context.Context) error {
		return c.input.SendKey(ctx, pathKey)
	}
	// The purchase is measured against the pre-targeting capture of the
	// winning region, not a fresh baseline taken with the menu open.
	ok, diff, err := c.verifier.RetryConfirmFrom(ctx, buy, result.Region, result.PreImage, c.cfg.UpgradeThreshold, c.cfg.Policy)
	if err != nil {
		return false, err
	}
	if !ok {
		// Nothing is committed; the step stays pending.
		return false, &UpgradeVerifyError{Target: action.Target, Path: action.Path, Tier: next, Score: diff}
	}

	committed := c.state.Commit(action.Target, action.Path)
	log.Info("Upgrade committed",
		"target", action.Target, "path", action.Path, "tier", committed, "diff", diff)

	return committed >= action.Tier, nil
}

func (c *UpgradeController) closeMenu(ctx context.Context) {
	if err := c.input.SendKey(ctx, c.cfg.CloseMenuKey); err != nil {
		logging.From(ctx).Debug("Failed to close entity menu", "error", err)
	}
}

func (c *UpgradeController) restCursor(ctx context.Context) {
	if err := c.input.MoveTo(ctx, float64(c.cfg.Resting.X), float64(c.cfg.Resting.Y)); err != nil {
		logging.From(ctx).Debug("Failed to park cursor", "error", err)
	}
}
