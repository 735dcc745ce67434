// Package vision implements screenshot capture and pixel-diff based
// action verification. An input is considered to have taken effect only
// when the screen region it should disturb changed by at least a
// configured percentage.
package vision

import "image"

// PercentDiff returns the percentage of pixels that differ between two
// images of the same dimensions. Images with mismatched bounds are
// treated as fully different.
func PercentDiff(a, b image.Image) float64 {
	return PercentDiffDelta(a, b, 0)
}

// PercentDiffDelta is PercentDiff with a per-channel tolerance: a pixel
// counts as changed only when some channel differs by more than delta.
// Call sites comparing noisy captures pass a small delta to ignore
// compression artifacts.
func PercentDiffDelta(a, b image.Image, delta uint8) float64 {
	if a == nil || b == nil {
		return 100
	}

	ba, bb := a.Bounds(), b.Bounds()
	if ba.Dx() != bb.Dx() || ba.Dy() != bb.Dy() {
		return 100
	}

	total := ba.Dx() * ba.Dy()
	if total == 0 {
		return 100
	}

	changed := 0
	for y := 0; y < ba.Dy(); y++ {
		for x := 0; x < ba.Dx(); x++ {
			ra, ga, bla, _ := a.At(ba.Min.X+x, ba.Min.Y+y).RGBA()
			rb, gb, blb, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if channelDiff(ra, rb, delta) || channelDiff(ga, gb, delta) || channelDiff(bla, blb, delta) {
				changed++
			}
		}
	}

	return float64(changed) / float64(total) * 100
}

// channelDiff compares two 16-bit channel values at 8-bit precision.
func channelDiff(a, b uint32, delta uint8) bool {
	av, bv := int(a>>8), int(b>>8)
	d := av - bv
	if d < 0 {
		d = -d
	}
	return d > int(delta)
}

// Confirm reports whether the difference between pre and post meets the
// threshold. A diff exactly at the threshold counts as confirmed. The
// measured diff is returned for logging.
func Confirm(pre, post image.Image, threshold float64) (bool, float64) {
	diff := PercentDiff(pre, post)
	return diff >= threshold, diff
}

// MostlyBlack reports whether at least ratio of the image's pixels are
// black. Used to reject captures taken while the screen is blanked.
func MostlyBlack(img image.Image, ratio float64) bool {
	if img == nil {
		return true
	}

	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return true
	}

	black := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r == 0 && g == 0 && b == 0 {
				black++
			}
		}
	}

	return float64(black)/float64(total) >= ratio
}
