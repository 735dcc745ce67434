// Package browser provides browser automation infrastructure.
package browser

import (
	"context"
	"image"
)

// Driver defines the interface for driving the game browser session.
// This abstraction allows for different browser implementations (ChromeDP, Playwright, etc.)
type Driver interface {
	// Start initializes the browser instance.
	Start(ctx context.Context) error

	// Stop closes the browser and releases resources.
	Stop() error

	// IsRunning returns true if the browser is active.
	IsRunning() bool

	// Navigate navigates to the specified URL.
	Navigate(ctx context.Context, url string) error

	// Reload refreshes the current page.
	Reload(ctx context.Context) error

	// BringToFront raises the game tab so inputs land on it.
	BringToFront(ctx context.Context) error

	// Click performs a mouse click at the specified coordinates.
	Click(ctx context.Context, x, y float64) error

	// MoveTo moves the cursor to the specified coordinates without
	// clicking. Used to park the cursor away from diff regions.
	MoveTo(ctx context.Context, x, y float64) error

	// SendKey sends a momentary key press (down then up).
	SendKey(ctx context.Context, key string) error

	// KeyDown presses and holds a key until KeyUp.
	KeyDown(ctx context.Context, key string) error

	// KeyUp releases a key held by KeyDown.
	KeyUp(ctx context.Context, key string) error

	// CaptureScreen captures the current browser screen.
	CaptureScreen(ctx context.Context) (image.Image, error)

	// SetViewport sets the browser viewport size.
	SetViewport(ctx context.Context, width, height int) error
}

// DriverConfig holds configuration for browser drivers.
type DriverConfig struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// WindowWidth is the browser window width.
	WindowWidth int

	// WindowHeight is the browser window height.
	WindowHeight int

	// ViewportWidth is the viewport width.
	ViewportWidth int

	// ViewportHeight is the viewport height.
	ViewportHeight int

	// DisableGPU disables GPU acceleration.
	DisableGPU bool

	// MuteAudio mutes browser audio.
	MuteAudio bool

	// HideScrollbars hides scrollbars.
	HideScrollbars bool

	// UserDataDir specifies a custom user data directory.
	UserDataDir string
}

// DefaultDriverConfig returns default browser configuration.
func DefaultDriverConfig() *DriverConfig {
	return &DriverConfig{
		Headless:       false,
		WindowWidth:    1280,
		WindowHeight:   840,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		DisableGPU:     false,
		MuteAudio:      true,
		HideScrollbars: true,
	}
}
