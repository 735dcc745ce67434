package application

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"popbot/application/vision"
	"popbot/core/event"
	"popbot/core/eventbus"
	"popbot/infrastructure/ocr"
)

// CurrencyReader polls the cash counter through the OCR service and
// caches the latest reading. A reading can be stale or absent; callers
// that gate on cash must treat an unknown value as unaffordable or
// wait for the next poll.
type CurrencyReader struct {
	screener vision.Screener
	client   ocr.Client
	roi      ocr.ROI
	interval time.Duration
	eventBus eventbus.EventBus
	runID    string
	logger   *slog.Logger

	// value is the last reading, or -1 when no reading succeeded yet.
	value atomic.Int64

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// CurrencyReaderConfig holds the dependencies of a currency reader.
type CurrencyReaderConfig struct {
	Screener vision.Screener
	Client   ocr.Client
	ROI      ocr.ROI
	Interval time.Duration
	EventBus eventbus.EventBus
	RunID    string
	Logger   *slog.Logger
}

// NewCurrencyReader creates a currency reader. It does not poll until
// Start is called.
func NewCurrencyReader(cfg *CurrencyReaderConfig) *CurrencyReader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	r := &CurrencyReader{
		screener: cfg.Screener,
		client:   cfg.Client,
		roi:      cfg.ROI,
		interval: cfg.Interval,
		eventBus: cfg.EventBus,
		runID:    cfg.RunID,
		logger:   cfg.Logger,
	}
	r.value.Store(-1)
	return r
}

// Start begins polling in the background. Calling Start on a running
// reader is a no-op.
func (r *CurrencyReader) Start(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.poll(ctx)

	r.logger.Debug("Currency reader started", "interval", r.interval)
}

// Stop ends polling and waits for the poll loop to exit.
func (r *CurrencyReader) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		r.logger.Warn("Currency reader stop timeout")
	}
}

// Current returns the latest reading. The second return is false while
// no reading has succeeded yet.
func (r *CurrencyReader) Current() (int, bool) {
	v := r.value.Load()
	if v < 0 {
		return 0, false
	}
	return int(v), true
}

func (r *CurrencyReader) poll(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.readOnce(ctx)
		}
	}
}

// readOnce takes one reading. Failures keep the previous value; the
// counter is often obscured mid-round and the next poll usually
// recovers.
func (r *CurrencyReader) readOnce(ctx context.Context) {
	if r.client == nil || !r.client.IsHealthy() {
		return
	}

	screen, err := r.screener.CaptureScreen(ctx)
	if err != nil {
		r.logger.Debug("Currency capture failed", "error", err)
		return
	}

	result, err := r.client.ReadCurrencyFromImage(ctx, screen, &r.roi)
	if err != nil {
		r.logger.Debug("Currency read failed", "error", err)
		return
	}

	prev := r.value.Swap(int64(result.Amount))
	if prev != int64(result.Amount) && r.eventBus != nil {
		r.eventBus.Publish(event.NewCurrencyUpdated(r.runID, result.Amount))
	}
}
