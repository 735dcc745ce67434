package browser

import "testing"

func TestDefaultDriverConfig(t *testing.T) {
	config := DefaultDriverConfig()

	if config == nil {
		t.Fatal("DefaultDriverConfig returned nil")
	}

	if config.Headless {
		t.Errorf("Headless = %v, want false", config.Headless)
	}

	if config.WindowWidth != 1280 {
		t.Errorf("WindowWidth = %d, want 1280", config.WindowWidth)
	}

	if config.WindowHeight != 840 {
		t.Errorf("WindowHeight = %d, want 840", config.WindowHeight)
	}

	if config.ViewportWidth != 1280 {
		t.Errorf("ViewportWidth = %d, want 1280", config.ViewportWidth)
	}

	if config.ViewportHeight != 720 {
		t.Errorf("ViewportHeight = %d, want 720", config.ViewportHeight)
	}

	if config.MuteAudio != true {
		t.Errorf("MuteAudio = %v, want true", config.MuteAudio)
	}

	if config.HideScrollbars != true {
		t.Errorf("HideScrollbars = %v, want true", config.HideScrollbars)
	}
}

func TestNewChromeDPDriver(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		driver := NewChromeDPDriver(nil)
		if driver == nil {
			t.Fatal("NewChromeDPDriver returned nil")
		}
		if driver.config == nil {
			t.Fatal("driver.config is nil")
		}
	})

	t.Run("with custom config", func(t *testing.T) {
		config := &DriverConfig{
			Headless:     true,
			WindowWidth:  1920,
			WindowHeight: 1080,
		}
		driver := NewChromeDPDriver(config)
		if driver == nil {
			t.Fatal("NewChromeDPDriver returned nil")
		}
		if !driver.config.Headless {
			t.Error("Custom config not applied")
		}
		if driver.config.WindowWidth != 1920 {
			t.Error("Custom config not applied")
		}
	})
}

func TestChromeDPDriver_IsRunning_NotStarted(t *testing.T) {
	driver := NewChromeDPDriver(nil)

	if driver.IsRunning() {
		t.Error("IsRunning() should return false before Start()")
	}
}

func TestChromeDPDriver_Stop_NotStarted(t *testing.T) {
	driver := NewChromeDPDriver(nil)

	// Should not panic or error when stopping a driver that was never started
	err := driver.Stop()
	if err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
}

func TestChromeDPDriver_InputsBeforeStart(t *testing.T) {
	driver := NewChromeDPDriver(nil)
	ctx := t.Context()

	if err := driver.Click(ctx, 10, 10); err == nil {
		t.Error("Click before Start should fail")
	}
	if err := driver.MoveTo(ctx, 10, 10); err == nil {
		t.Error("MoveTo before Start should fail")
	}
	if err := driver.SendKey(ctx, "q"); err == nil {
		t.Error("SendKey before Start should fail")
	}
	if err := driver.KeyDown(ctx, "u"); err == nil {
		t.Error("KeyDown before Start should fail")
	}
	if _, err := driver.CaptureScreen(ctx); err == nil {
		t.Error("CaptureScreen before Start should fail")
	}
}
