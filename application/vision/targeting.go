package vision

import (
	"context"
	"fmt"
	"image"

	"popbot/infrastructure/logging"
)

// TargetResult describes which watched region confirmed a targeting
// action.
type TargetResult struct {
	// Region is the watched region that crossed the threshold.
	Region Region

	// PreImage is the baseline capture of the winning region, kept so
	// follow-up actions against the same region can reuse it.
	PreImage image.Image

	// Score is the measured percent diff of the winning region.
	Score float64

	// Attempts is the number of times the action was performed.
	Attempts int
}

// watchedRegion pairs a region with its baseline capture.
type watchedRegion struct {
	region Region
	pre    image.Image
}

// TryTargeting performs the action and watches two regions, confirming
// when either changes by at least threshold percent. The menu opens on
// the side opposite the click, so only one region is expected to react.
//
// Both baselines are captured once, before the first attempt. If one
// baseline capture fails its region is dropped and the other still
// participates; only when both fail does the operation error out. A
// post-action capture failure in one region never aborts the check of
// the other.
func (v *Verifier) TryTargeting(ctx context.Context, action Action, regionA, regionB Region, threshold float64, policy Policy) (*TargetResult, bool, error) {
	log := logging.From(ctx)

	watched := make([]watchedRegion, 0, 2)
	var captureErr error
	for _, region := range []Region{regionA, regionB} {
		pre, err := v.grabber.Grab(ctx, region)
		if err != nil {
			log.Debug("Baseline capture failed", "region", fmt.Sprintf("%+v", region), "error", err)
			captureErr = err
			continue
		}
		watched = append(watched, watchedRegion{region: region, pre: pre})
	}
	if len(watched) == 0 {
		return nil, false, fmt.Errorf("no watchable regions: %w", captureErr)
	}

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		if err := action(ctx); err != nil {
			log.Debug("Targeting attempt failed", "attempt", attempt, "error", err)
			if !v.waitRetry(ctx, attempt, policy) {
				return nil, false, ctx.Err()
			}
			continue
		}

		if !sleepCtx(ctx, policy.SettleDelay) {
			return nil, false, ctx.Err()
		}

		for _, w := range watched {
			post, err := v.grabber.Grab(ctx, w.region)
			if err != nil {
				log.Debug("Post-action capture failed",
					"region", fmt.Sprintf("%+v", w.region), "attempt", attempt, "error", err)
				continue
			}

			if ok, diff := Confirm(w.pre, post, threshold); ok {
				return &TargetResult{
					Region:   w.region,
					PreImage: w.pre,
					Score:    diff,
					Attempts: attempt,
				}, true, nil
			}
		}

		if !v.waitRetry(ctx, attempt, policy) {
			return nil, false, ctx.Err()
		}
	}

	return nil, false, nil
}
