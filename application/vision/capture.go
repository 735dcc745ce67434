package vision

import (
	"context"
	"fmt"
	"image"
	"time"

	"popbot/infrastructure/logging"
)

// Region is a rectangular screen area in CSS pixels.
type Region struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Validate checks that the region has positive dimensions.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region %dx%d has non-positive dimensions", r.Width, r.Height)
	}
	return nil
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Screener captures the full game screen.
type Screener interface {
	CaptureScreen(ctx context.Context) (image.Image, error)
}

// CaptureError reports a region capture that failed after retries.
type CaptureError struct {
	Region Region
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("failed to capture region %+v: %v", e.Region, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// subImager is implemented by image types that can crop without copying.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// ScreenCapture grabs screen regions through a Screener, retrying
// transient failures and rejecting blanked frames.
type ScreenCapture struct {
	screener Screener

	// MaxAttempts bounds retries for a single region grab.
	MaxAttempts int

	// RetryDelay is the pause between capture attempts.
	RetryDelay time.Duration

	// BlackRatio is the fraction of black pixels above which a frame is
	// rejected as blanked. Zero disables the check.
	BlackRatio float64
}

// NewScreenCapture creates a capture helper over the given screener.
func NewScreenCapture(screener Screener) *ScreenCapture {
	return &ScreenCapture{
		screener:    screener,
		MaxAttempts: 3,
		RetryDelay:  200 * time.Millisecond,
		BlackRatio:  0.98,
	}
}

// Grab captures a single region. Transient failures are retried up to
// MaxAttempts; exhaustion returns a CaptureError.
func (s *ScreenCapture) Grab(ctx context.Context, region Region) (image.Image, error) {
	if err := region.Validate(); err != nil {
		return nil, &CaptureError{Region: region, Err: err}
	}

	log := logging.From(ctx)

	var lastErr error
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &CaptureError{Region: region, Err: err}
		}

		img, err := s.grabOnce(ctx, region)
		if err == nil {
			return img, nil
		}
		lastErr = err
		log.Debug("Region capture attempt failed",
			"region", fmt.Sprintf("%+v", region), "attempt", attempt, "error", err)

		if attempt < s.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, &CaptureError{Region: region, Err: ctx.Err()}
			case <-time.After(s.RetryDelay):
			}
		}
	}

	return nil, &CaptureError{Region: region, Err: lastErr}
}

func (s *ScreenCapture) grabOnce(ctx context.Context, region Region) (image.Image, error) {
	frame, err := s.screener.CaptureScreen(ctx)
	if err != nil {
		return nil, err
	}

	cropped, err := crop(frame, region)
	if err != nil {
		return nil, err
	}

	if s.BlackRatio > 0 && MostlyBlack(cropped, s.BlackRatio) {
		return nil, fmt.Errorf("captured frame is mostly black")
	}

	return cropped, nil
}

func crop(frame image.Image, region Region) (image.Image, error) {
	rect := region.Rect()
	if !rect.In(frame.Bounds()) {
		return nil, fmt.Errorf("region %v outside frame bounds %v", rect, frame.Bounds())
	}

	si, ok := frame.(subImager)
	if !ok {
		return nil, fmt.Errorf("frame type %T does not support cropping", frame)
	}
	return si.SubImage(rect), nil
}
