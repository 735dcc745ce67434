package control

import (
	"context"
	"errors"
	"image"
	"image/color"

	"popbot/application/vision"
	"popbot/domain/tower"
)

// uniform creates an 8x8 image filled with a single gray level.
func uniform(level uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	c := color.RGBA{R: level, G: level, B: level, A: 255}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// grabResult is one scripted response from the fake grabber.
type grabResult struct {
	img image.Image
	err error
}

// fakeGrabber returns scripted results per region in order, repeating
// the last entry once the script runs out.
type fakeGrabber struct {
	queues map[vision.Region][]grabResult
	calls  map[vision.Region]int
}

func newFakeGrabber() *fakeGrabber {
	return &fakeGrabber{
		queues: make(map[vision.Region][]grabResult),
		calls:  make(map[vision.Region]int),
	}
}

func (f *fakeGrabber) queue(region vision.Region, img image.Image, err error) {
	f.queues[region] = append(f.queues[region], grabResult{img: img, err: err})
}

// queueConfirm scripts a baseline plus a changed frame, so the next
// verification over the region succeeds on the first attempt.
func (f *fakeGrabber) queueConfirm(region vision.Region) {
	f.queue(region, uniform(10), nil)
	f.queue(region, uniform(200), nil)
}

// queueStatic scripts a region that never changes.
func (f *fakeGrabber) queueStatic(region vision.Region) {
	f.queue(region, uniform(10), nil)
	f.queue(region, uniform(10), nil)
}

func (f *fakeGrabber) Grab(ctx context.Context, region vision.Region) (image.Image, error) {
	q := f.queues[region]
	if len(q) == 0 {
		return nil, errors.New("no scripted response for region")
	}
	i := f.calls[region]
	f.calls[region]++
	if i >= len(q) {
		i = len(q) - 1
	}
	return q[i].img, q[i].err
}

// fakeInput records dispatched gestures.
type fakeInput struct {
	clicks   [][2]float64
	moves    [][2]float64
	keys     []string
	keyDowns []string
	keyUps   []string
}

func (f *fakeInput) Click(ctx context.Context, x, y float64) error {
	f.clicks = append(f.clicks, [2]float64{x, y})
	return nil
}

func (f *fakeInput) MoveTo(ctx context.Context, x, y float64) error {
	f.moves = append(f.moves, [2]float64{x, y})
	return nil
}

func (f *fakeInput) SendKey(ctx context.Context, key string) error {
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeInput) KeyDown(ctx context.Context, key string) error {
	f.keyDowns = append(f.keyDowns, key)
	return nil
}

func (f *fakeInput) KeyUp(ctx context.Context, key string) error {
	f.keyUps = append(f.keyUps, key)
	return nil
}

// lastMove returns the final cursor position, or false when the cursor
// never moved.
func (f *fakeInput) lastMove() ([2]float64, bool) {
	if len(f.moves) == 0 {
		return [2]float64{}, false
	}
	return f.moves[len(f.moves)-1], true
}

// testConfig returns controller settings with no delays.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Policy = vision.Policy{MaxAttempts: 3}
	cfg.HeroHold = 0
	return cfg
}

// dartRegistry returns a registry holding a Dart Monkey with the stock
// cost table.
func dartRegistry() *tower.Registry {
	reg := tower.NewRegistry()
	reg.Register(&tower.Tower{
		Name:   "Dart Monkey",
		Hotkey: "q",
		Cost:   "$170 ( Easy ) $200 ( Medium ) $215 ( Hard ) $240 ( Impoppable )",
		Upgrades: map[string][]tower.UpgradeCosts{
			"path_3": {
				{75, 90, 95, 110},
				{170, 200, 215, 240},
			},
		},
	})
	return reg
}
