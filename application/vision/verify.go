package vision

import (
	"context"
	"image"
	"time"

	"popbot/infrastructure/logging"
)

// RegionGrabber captures a single screen region.
type RegionGrabber interface {
	Grab(ctx context.Context, region Region) (image.Image, error)
}

// Policy bounds a verification loop.
type Policy struct {
	// MaxAttempts is the number of times the action is performed before
	// giving up.
	MaxAttempts int

	// SettleDelay is the wait between performing the action and taking
	// the post-action capture, giving the game time to redraw.
	SettleDelay time.Duration

	// RetryDelay is the pause between failed attempts.
	RetryDelay time.Duration
}

// Action is an input gesture whose effect is verified visually.
type Action func(ctx context.Context) error

// Verifier runs act-then-confirm loops over captured screen regions.
type Verifier struct {
	grabber RegionGrabber
}

// NewVerifier creates a verifier over the given region grabber.
func NewVerifier(grabber RegionGrabber) *Verifier {
	return &Verifier{grabber: grabber}
}

// RetryConfirm performs the action and confirms it changed the watched
// region by at least threshold percent. The pre-action capture is taken
// once; each attempt re-performs the action and compares a fresh
// post-action capture against it. Transient action and capture failures
// consume an attempt and are retried. Returns whether the action was
// confirmed and the last measured diff.
//
// A failed pre-action capture fails the whole operation: without a
// baseline there is nothing to compare against.
func (v *Verifier) RetryConfirm(ctx context.Context, action Action, region Region, threshold float64, policy Policy) (bool, float64, error) {
	pre, err := v.grabber.Grab(ctx, region)
	if err != nil {
		return false, 0, err
	}
	return v.RetryConfirmFrom(ctx, action, region, pre, threshold, policy)
}

// RetryConfirmFrom is RetryConfirm against a caller-supplied baseline.
// Used when the baseline must predate an earlier confirmed action over
// the same region, such as an upgrade purchase measured against the
// capture taken before the entity menu opened.
func (v *Verifier) RetryConfirmFrom(ctx context.Context, action Action, region Region, pre image.Image, threshold float64, policy Policy) (bool, float64, error) {
	log := logging.From(ctx)

	var lastDiff float64
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, lastDiff, err
		}

		if err := action(ctx); err != nil {
			log.Debug("Action attempt failed", "attempt", attempt, "error", err)
			if !v.waitRetry(ctx, attempt, policy) {
				return false, lastDiff, ctx.Err()
			}
			continue
		}

		if !sleepCtx(ctx, policy.SettleDelay) {
			return false, lastDiff, ctx.Err()
		}

		post, err := v.grabber.Grab(ctx, region)
		if err != nil {
			log.Debug("Post-action capture failed", "attempt", attempt, "error", err)
			if !v.waitRetry(ctx, attempt, policy) {
				return false, lastDiff, ctx.Err()
			}
			continue
		}

		ok, diff := Confirm(pre, post, threshold)
		lastDiff = diff
		if ok {
			return true, diff, nil
		}

		log.Debug("Action not confirmed",
			"attempt", attempt, "diff", diff, "threshold", threshold)
		if !v.waitRetry(ctx, attempt, policy) {
			return false, lastDiff, ctx.Err()
		}
	}

	return false, lastDiff, nil
}

// waitRetry sleeps between attempts. Returns false when the context was
// cancelled, or immediately after the final attempt.
func (v *Verifier) waitRetry(ctx context.Context, attempt int, policy Policy) bool {
	if attempt >= policy.MaxAttempts {
		return true
	}
	return sleepCtx(ctx, policy.RetryDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
