package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeDPDriver implements Driver using chromedp.
type ChromeDPDriver struct {
	config      *DriverConfig
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	running     bool
}

// NewChromeDPDriver creates a new ChromeDP-based browser driver.
func NewChromeDPDriver(config *DriverConfig) *ChromeDPDriver {
	if config == nil {
		config = DefaultDriverConfig()
	}
	return &ChromeDPDriver{
		config: config,
	}
}

// buildExecAllocatorOptions builds chromedp options from config.
func (d *ChromeDPDriver) buildExecAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.config.Headless),
		chromedp.Flag("hide-scrollbars", d.config.HideScrollbars),
		chromedp.Flag("mute-audio", d.config.MuteAudio),
		chromedp.Flag("disable-gpu", d.config.DisableGPU),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(d.config.WindowWidth, d.config.WindowHeight),
	)

	if d.config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(d.config.UserDataDir))
	}

	return opts
}

// Start initializes the browser instance.
func (d *ChromeDPDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("browser already running")
	}

	// Create allocator context from context.Background() to ensure browser lifecycle
	// is independent of the caller's context
	d.allocCtx, d.allocCancel = chromedp.NewExecAllocator(
		context.Background(),
		d.buildExecAllocatorOptions()...,
	)

	// Create browser context
	d.ctx, d.cancel = chromedp.NewContext(d.allocCtx)

	d.running = true
	return nil
}

// Stop closes the browser and releases resources.
func (d *ChromeDPDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.running = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.allocCancel != nil {
		d.allocCancel()
		d.allocCancel = nil
	}
	d.ctx = nil
	d.allocCtx = nil
	return nil
}

// IsRunning returns true if the browser is active.
func (d *ChromeDPDriver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// browserContext snapshots the current browser context under lock.
func (d *ChromeDPDriver) browserContext() (context.Context, error) {
	d.mu.Lock()
	browserCtx := d.ctx
	running := d.running
	d.mu.Unlock()

	if !running || browserCtx == nil {
		return nil, fmt.Errorf("browser not running")
	}
	return browserCtx, nil
}

// Navigate navigates to the specified URL.
func (d *ChromeDPDriver) Navigate(ctx context.Context, url string) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	return chromedp.Run(browserCtx, chromedp.Navigate(url))
}

// Reload refreshes the current page.
func (d *ChromeDPDriver) Reload(ctx context.Context) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	return chromedp.Run(browserCtx, chromedp.Reload())
}

// BringToFront raises the game tab so inputs land on it.
func (d *ChromeDPDriver) BringToFront(ctx context.Context) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(browserCtx, 3*time.Second)
	defer cancel()

	return chromedp.Run(timeoutCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return page.BringToFront().Do(ctx)
		}),
	)
}

// Click performs a mouse click at the specified coordinates.
func (d *ChromeDPDriver) Click(ctx context.Context, x, y float64) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	// Add timeout protection
	timeoutCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	return chromedp.Run(timeoutCtx,
		chromedp.MouseClickXY(x, y, chromedp.ButtonLeft),
	)
}

// MoveTo moves the cursor to the specified coordinates without clicking.
func (d *ChromeDPDriver) MoveTo(ctx context.Context, x, y float64) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	return chromedp.Run(timeoutCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := &input.DispatchMouseEventParams{
			Type: input.MouseMoved,
			X:    x,
			Y:    y,
		}
		return p.Do(ctx)
	}))
}

// SendKey sends a momentary key press (down then up).
func (d *ChromeDPDriver) SendKey(ctx context.Context, key string) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	return chromedp.Run(timeoutCtx, chromedp.KeyEvent(key))
}

// KeyDown presses and holds a key until KeyUp.
func (d *ChromeDPDriver) KeyDown(ctx context.Context, key string) error {
	return d.dispatchKey(input.KeyDown, key)
}

// KeyUp releases a key held by KeyDown.
func (d *ChromeDPDriver) KeyUp(ctx context.Context, key string) error {
	return d.dispatchKey(input.KeyUp, key)
}

func (d *ChromeDPDriver) dispatchKey(typ input.KeyType, key string) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	return chromedp.Run(timeoutCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := &input.DispatchKeyEventParams{
			Type: typ,
			Key:  key,
		}
		if typ == input.KeyDown {
			p.Text = key
		}
		return p.Do(ctx)
	}))
}

// CaptureScreen captures the current browser screen.
func (d *ChromeDPDriver) CaptureScreen(ctx context.Context) (image.Image, error) {
	browserCtx, err := d.browserContext()
	if err != nil {
		return nil, err
	}

	// Add timeout protection
	timeoutCtx, cancel := context.WithTimeout(browserCtx, 3*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(timeoutCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	return img, nil
}

// SetViewport sets the browser viewport size.
func (d *ChromeDPDriver) SetViewport(ctx context.Context, width, height int) error {
	browserCtx, err := d.browserContext()
	if err != nil {
		return err
	}

	return chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
	)
}

// Context returns the underlying chromedp context.
// This is useful for advanced operations not covered by the Driver interface.
func (d *ChromeDPDriver) Context() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctx
}

// Ensure ChromeDPDriver implements Driver
var _ Driver = (*ChromeDPDriver)(nil)
