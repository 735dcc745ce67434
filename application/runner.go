// Package application provides the application layer orchestrating a
// run: pre-play setup, step dispatch with affordability gating, error
// classification and run-state bookkeeping.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"popbot/application/control"
	"popbot/core/event"
	"popbot/core/eventbus"
	"popbot/core/state"
	"popbot/domain/gamemap"
	"popbot/domain/run"
)

// Placer places towers and heroes.
type Placer interface {
	Place(ctx context.Context, action gamemap.Action) error
	PlaceHero(ctx context.Context, hero gamemap.Hero) error
}

// Upgrader advances an entity toward a requested upgrade tier, at most
// one tier per call.
type Upgrader interface {
	Execute(ctx context.Context, action gamemap.Action, pos gamemap.Position) (bool, error)
}

// CurrencySource exposes the latest cash reading. The second return is
// false while no reading is available.
type CurrencySource interface {
	Current() (int, bool)
}

// RunnerConfig holds the dependencies of a Runner.
type RunnerConfig struct {
	// RunID identifies the run in events and records. Generated when
	// empty.
	RunID string

	Map       *gamemap.MapConfig
	Scheduler *control.Scheduler
	Placer    Placer
	Upgrader  Upgrader
	Upgrades  *control.UpgradeState
	Currency  CurrencySource
	EventBus  eventbus.EventBus
	Kill      *KillSwitch
	Logger    *slog.Logger

	// BrowserRunning reports whether the game browser is still up.
	// Optional; when nil the browser is assumed alive.
	BrowserRunning func() bool

	// AffordWait is the pause before re-checking an unaffordable step.
	AffordWait time.Duration

	// FailureWait is the pause after a recoverable step failure.
	FailureWait time.Duration

	// MaxConsecutiveFailures ends the run when a step keeps failing
	// recoverably without any progress in between.
	MaxConsecutiveFailures int
}

// Runner drives one autoplay run from pre-play setup to the end of the
// plan, dispatching each step through the controllers and recording the
// outcome.
type Runner struct {
	id        string
	mapCfg    *gamemap.MapConfig
	scheduler *control.Scheduler
	placer    Placer
	upgrader  Upgrader
	upgrades  *control.UpgradeState
	currency  CurrencySource
	eventBus  eventbus.EventBus
	kill      *KillSwitch
	logger    *slog.Logger

	browserRunning func() bool
	affordWait     time.Duration
	failureWait    time.Duration
	maxFailures    int

	stateMu sync.Mutex
	state   state.RunState

	record *run.Record
}

// NewRunner creates a runner for one map plan.
func NewRunner(cfg *RunnerConfig) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AffordWait <= 0 {
		cfg.AffordWait = time.Second
	}
	if cfg.FailureWait <= 0 {
		cfg.FailureWait = time.Second
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = 5
	}
	if cfg.Kill == nil {
		cfg.Kill = NewKillSwitch()
	}

	id := cfg.RunID
	if id == "" {
		id = uuid.NewString()
	}

	record := run.NewRecord(cfg.Map.Name, cfg.Map.Difficulty, cfg.Map.Mode)
	record.ID = id

	return &Runner{
		id:             id,
		mapCfg:         cfg.Map,
		scheduler:      cfg.Scheduler,
		placer:         cfg.Placer,
		upgrader:       cfg.Upgrader,
		upgrades:       cfg.Upgrades,
		currency:       cfg.Currency,
		eventBus:       cfg.EventBus,
		kill:           cfg.Kill,
		logger:         cfg.Logger.With("run_id", id),
		browserRunning: cfg.BrowserRunning,
		affordWait:     cfg.AffordWait,
		failureWait:    cfg.FailureWait,
		maxFailures:    cfg.MaxConsecutiveFailures,
		state:          state.StateIdle,
		record:         record,
	}
}

// ID returns the run identifier.
func (r *Runner) ID() string {
	return r.id
}

// State returns the current run state.
func (r *Runner) State() state.RunState {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}

// Record returns the run record. Its final fields are populated once
// Run returns.
func (r *Runner) Record() *run.Record {
	return r.record
}

// Stop requests a manual stop. The current step finishes its cleanup
// before the run ends.
func (r *Runner) Stop() {
	r.kill.Trigger("manual stop")
}

// Run executes the plan and returns the finished record. The returned
// error is non-nil only when the run ended abnormally.
func (r *Runner) Run(ctx context.Context) (*run.Record, error) {
	if err := r.transition(state.StateStarting); err != nil {
		return nil, err
	}
	r.publish(event.NewRunStarted(r.id, r.mapCfg.Name, r.mapCfg.Difficulty, r.mapCfg.Mode))

	// The kill switch cancels the run context so an in-flight
	// verification loop unwinds promptly.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.kill.Triggered():
			cancel()
		case <-ctx.Done():
		}
	}()

	reason, runErr := r.play(ctx)

	_ = r.transition(state.StateStopping)
	_ = r.transition(state.StateStopped)

	if cash, ok := r.currencyValue(); ok {
		r.record.FinalCurrency = cash
	}
	r.record.StepsCompleted = r.scheduler.StepsCompleted()
	r.record.StepsPlanned = r.scheduler.StepsPlanned()
	r.record.Finish(outcomeFor(reason), runErr)

	r.publish(event.NewRunFinished(r.id, reason, r.record.StepsCompleted, runErr))
	r.logger.Info("Run finished",
		"map", r.mapCfg.Name, "reason", reason.String(),
		"completed", r.record.StepsCompleted, "planned", r.record.StepsPlanned)

	return r.record, runErr
}

func (r *Runner) play(ctx context.Context) (event.StopReason, error) {
	if err := r.transition(state.StatePrePlay); err != nil {
		return event.StopReasonError, err
	}

	if reason, err := r.prePlay(ctx); err != nil || reason != event.StopReasonNormal {
		return reason, err
	}

	if err := r.transition(state.StatePlaying); err != nil {
		return event.StopReasonError, err
	}

	return r.dispatchLoop(ctx)
}

// prePlay picks the hero and places the starting towers. Pre-play
// placements run against the starting cash and are not gated on the
// currency reader.
func (r *Runner) prePlay(ctx context.Context) (event.StopReason, error) {
	if hero := r.mapCfg.Hero; hero != nil {
		if err := r.placer.PlaceHero(ctx, *hero); err != nil {
			if stopped, reason := r.interrupted(ctx, err); stopped {
				return reason, nil
			}
			if control.IsFatal(err) {
				return event.StopReasonError, err
			}
			// A missing hero is survivable; the plan continues without it.
			r.logger.Warn("Hero placement failed, continuing", "hero", hero.Name, "error", err)
		}
	}

	for _, a := range r.mapCfg.PrePlay {
		if stopped, reason := r.interrupted(ctx, nil); stopped {
			return reason, nil
		}

		err := r.placer.Place(ctx, a)
		if err == nil {
			r.publish(event.NewActionCompleted(r.id, a.Step, string(a.Kind), a.Target))
			r.wait(ctx, r.placementDelay())
			continue
		}
		if stopped, reason := r.interrupted(ctx, err); stopped {
			return reason, nil
		}
		if control.IsFatal(err) {
			r.publish(event.NewActionFailed(r.id, a.Step, string(a.Kind), a.Target, true, err))
			return event.StopReasonError, err
		}
		r.publish(event.NewActionFailed(r.id, a.Step, string(a.Kind), a.Target, false, err))
		r.logger.Warn("Pre-play placement failed, continuing", "target", a.Target, "error", err)
	}

	return event.StopReasonNormal, nil
}

// dispatchLoop walks the plan in step order. Each pass picks the lowest
// incomplete step, vets it, gates it on affordability and executes it.
// Upgrade steps that span several tiers stay incomplete until the final
// tier commits.
func (r *Runner) dispatchLoop(ctx context.Context) (event.StopReason, error) {
	failures := 0

	for {
		if stopped, reason := r.interrupted(ctx, nil); stopped {
			return reason, nil
		}

		a, ok := r.scheduler.NextAction()
		if !ok {
			return event.StopReasonNormal, nil
		}

		// Vetting runs before the affordability gate: the gate fails
		// closed on unknown prices, so an unresolvable step parked in
		// front of it would stall the plan forever.
		cost, vetErr := r.vetStep(a)
		if vetErr != nil {
			r.scheduler.MarkCompleted(a.Step)
			r.publish(event.NewActionFailed(r.id, a.Step, string(a.Kind), a.Target, false, vetErr))
			r.logger.Warn("Step retired by validation", "step", a.Step, "target", a.Target, "error", vetErr)
			continue
		}

		if cash, known := r.currencyValue(); known && cash < cost {
			r.wait(ctx, r.affordWait)
			continue
		}

		done, err := r.executeStep(ctx, a)
		if err == nil {
			failures = 0
			if done {
				r.scheduler.MarkCompleted(a.Step)
				r.publish(event.NewActionCompleted(r.id, a.Step, string(a.Kind), a.Target))
			}
			r.wait(ctx, r.stepDelay(a))
			continue
		}

		if stopped, reason := r.interrupted(ctx, err); stopped {
			return reason, nil
		}

		var valErr *control.ValidationError
		if errors.As(err, &valErr) {
			// Invalid steps are retired immediately; retrying cannot help.
			r.scheduler.MarkCompleted(a.Step)
			r.publish(event.NewActionFailed(r.id, a.Step, string(a.Kind), a.Target, false, err))
			r.logger.Warn("Step retired by validation", "step", a.Step, "error", err)
			continue
		}

		if control.IsFatal(err) {
			r.publish(event.NewActionFailed(r.id, a.Step, string(a.Kind), a.Target, true, err))
			return event.StopReasonError, err
		}

		failures++
		r.publish(event.NewActionFailed(r.id, a.Step, string(a.Kind), a.Target, false, err))
		r.logger.Warn("Step failed, will retry",
			"step", a.Step, "target", a.Target, "failures", failures, "error", err)
		if failures >= r.maxFailures {
			return event.StopReasonError, fmt.Errorf("step %d failed %d times in a row: %w", a.Step, failures, err)
		}
		r.wait(ctx, r.failureWait)
	}
}

// vetStep rejects a step that can never execute: a structurally invalid
// action, or one whose price has no entry in the tower data. Returns
// the resolved cost for the affordability gate.
func (r *Runner) vetStep(a gamemap.Action) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, &control.ValidationError{Step: a.Step, Err: err}
	}
	cost, ok := r.scheduler.Cost(a)
	if !ok {
		return 0, &control.ValidationError{
			Step: a.Step,
			Err:  fmt.Errorf("no cost data for %q", a.Target),
		}
	}
	return cost, nil
}

// executeStep runs one plan action. For multi-tier upgrades done stays
// false until the requested tier commits.
func (r *Runner) executeStep(ctx context.Context, a gamemap.Action) (bool, error) {
	switch a.Kind {
	case gamemap.ActionBuy:
		if err := r.placer.Place(ctx, a); err != nil {
			return false, err
		}
		return true, nil

	case gamemap.ActionUpgrade:
		pos, ok := r.mapCfg.PlacementPosition(a.Target)
		if !ok {
			return false, &control.ValidationError{
				Step: a.Step,
				Err:  fmt.Errorf("%q was never placed by this plan", a.Target),
			}
		}
		done, err := r.upgrader.Execute(ctx, a, pos)
		if err != nil {
			return false, err
		}
		if r.upgrades != nil {
			if tier := r.upgrades.Tier(a.Target, a.Path); tier > 0 {
				r.publish(event.NewUpgradeCommitted(r.id, a.Target, a.Path, tier))
			}
		}
		return done, nil

	default:
		return false, &control.ValidationError{
			Step: a.Step,
			Err:  fmt.Errorf("unknown action kind %q", a.Kind),
		}
	}
}

// interrupted reports whether the run should stop for a reason other
// than the plan itself: manual stop, context cancellation or a dead
// browser. A step error caused by the cancellation is folded into the
// stop instead of being reported as a failure.
func (r *Runner) interrupted(ctx context.Context, stepErr error) (bool, event.StopReason) {
	if r.kill.IsTriggered() {
		return true, event.StopReasonManual
	}
	if ctx.Err() != nil || errors.Is(stepErr, context.Canceled) {
		return true, event.StopReasonManual
	}
	if r.browserRunning != nil && !r.browserRunning() {
		return true, event.StopReasonBrowserStopped
	}
	return false, event.StopReasonNormal
}

func (r *Runner) transition(to state.RunState) error {
	r.stateMu.Lock()
	from := r.state
	if !from.CanTransitionTo(to) {
		r.stateMu.Unlock()
		return state.NewTransitionError(from, to, "not a legal next state")
	}
	r.state = to
	r.stateMu.Unlock()

	r.publish(event.NewRunStateChanged(r.id, from, to))
	return nil
}

func (r *Runner) publish(e event.Event) {
	if r.eventBus != nil {
		r.eventBus.Publish(e)
	}
}

func (r *Runner) currencyValue() (int, bool) {
	if r.currency == nil {
		return 0, false
	}
	return r.currency.Current()
}

func (r *Runner) placementDelay() time.Duration {
	return r.mapCfg.Timing.PlacementDelay
}

func (r *Runner) stepDelay(a gamemap.Action) time.Duration {
	if a.Kind == gamemap.ActionUpgrade {
		return r.mapCfg.Timing.UpgradeDelay
	}
	return r.mapCfg.Timing.PlacementDelay
}

func (r *Runner) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-r.kill.Triggered():
	case <-time.After(d):
	}
}

func outcomeFor(reason event.StopReason) run.Outcome {
	switch reason {
	case event.StopReasonNormal:
		return run.OutcomeCompleted
	case event.StopReasonManual, event.StopReasonBrowserStopped:
		return run.OutcomeCancelled
	default:
		return run.OutcomeFailed
	}
}
