package application

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"popbot/infrastructure/ocr"
)

type fakeScreener struct {
	mu  sync.Mutex
	err error
}

func (s *fakeScreener) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeScreener) CaptureScreen(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

// fakeOCR serves scripted amounts in order, repeating the last.
type fakeOCR struct {
	mu      sync.Mutex
	amounts []int
	calls   int
	healthy bool
}

func (c *fakeOCR) ReadCurrency(ctx context.Context, imageBytes []byte, roi *ocr.ROI) (*ocr.CurrencyResult, error) {
	return nil, errors.New("not used")
}

func (c *fakeOCR) ReadCurrencyFromImage(ctx context.Context, img image.Image, roi *ocr.ROI) (*ocr.CurrencyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.amounts) == 0 {
		return nil, errors.New("no scripted amount")
	}
	i := c.calls
	c.calls++
	if i >= len(c.amounts) {
		i = len(c.amounts) - 1
	}
	return &ocr.CurrencyResult{Amount: c.amounts[i]}, nil
}

func (c *fakeOCR) IsHealthy() bool { return c.healthy }

func (c *fakeOCR) Close() {}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestCurrencyReader_Polls(t *testing.T) {
	bus := &recordingBus{}
	reader := NewCurrencyReader(&CurrencyReaderConfig{
		Screener: &fakeScreener{},
		Client:   &fakeOCR{amounts: []int{650}, healthy: true},
		Interval: 2 * time.Millisecond,
		EventBus: bus,
		RunID:    "run-1",
	})

	if _, ok := reader.Current(); ok {
		t.Error("reader should report no value before the first reading")
	}

	reader.Start(context.Background())
	defer reader.Stop()

	eventually(t, func() bool {
		v, ok := reader.Current()
		return ok && v == 650
	}, "reader never picked up the scripted amount")

	eventually(t, func() bool {
		return bus.count("CurrencyUpdated") >= 1
	}, "no CurrencyUpdated event published")
}

func TestCurrencyReader_PublishesOnChangeOnly(t *testing.T) {
	bus := &recordingBus{}
	reader := NewCurrencyReader(&CurrencyReaderConfig{
		Screener: &fakeScreener{},
		Client:   &fakeOCR{amounts: []int{650}, healthy: true},
		Interval: 2 * time.Millisecond,
		EventBus: bus,
		RunID:    "run-1",
	})

	reader.Start(context.Background())
	defer reader.Stop()

	eventually(t, func() bool {
		v, ok := reader.Current()
		return ok && v == 650
	}, "reader never picked up the scripted amount")

	// Let several more polls of the same value happen.
	time.Sleep(20 * time.Millisecond)
	if got := bus.count("CurrencyUpdated"); got != 1 {
		t.Errorf("CurrencyUpdated published %d times for a stable value, want 1", got)
	}
}

func TestCurrencyReader_SkipsUnhealthyClient(t *testing.T) {
	reader := NewCurrencyReader(&CurrencyReaderConfig{
		Screener: &fakeScreener{},
		Client:   &fakeOCR{amounts: []int{650}, healthy: false},
		Interval: 2 * time.Millisecond,
	})

	reader.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	reader.Stop()

	if _, ok := reader.Current(); ok {
		t.Error("unhealthy client should never produce a reading")
	}
}

func TestCurrencyReader_KeepsValueAcrossCaptureFailures(t *testing.T) {
	screener := &fakeScreener{}
	reader := NewCurrencyReader(&CurrencyReaderConfig{
		Screener: screener,
		Client:   &fakeOCR{amounts: []int{650}, healthy: true},
		Interval: 2 * time.Millisecond,
	})

	reader.Start(context.Background())
	defer reader.Stop()

	eventually(t, func() bool {
		_, ok := reader.Current()
		return ok
	}, "reader never picked up a value")

	screener.fail(errors.New("capture failed"))
	time.Sleep(20 * time.Millisecond)

	if v, ok := reader.Current(); !ok || v != 650 {
		t.Errorf("Current = %d/%v after capture failures, want the last good value", v, ok)
	}
}
