// Package config loads the global settings file: browser target, action
// pacing, retry policy, diff thresholds and screen regions.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Region is a rectangular screen area in CSS pixels.
type Region struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Point is a single screen coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Browser configures the game browser session.
type Browser struct {
	URL      string `yaml:"url"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Headless bool   `yaml:"headless"`
}

// Timing controls delays between input actions.
type Timing struct {
	PlacementDelay time.Duration
	UpgradeDelay   time.Duration
	ClickDelay     time.Duration
	KeyDelay       time.Duration
	HeroHold       time.Duration
	CurrencyPoll   time.Duration
}

// Retries controls how often visual verification re-attempts an action.
type Retries struct {
	MaxAttempts     int
	RetryDelay      time.Duration
	CaptureAttempts int
}

// Thresholds are the percent-diff levels above which an action counts
// as visually confirmed.
type Thresholds struct {
	Selection float64 `yaml:"selection"`
	Targeting float64 `yaml:"targeting"`
	Upgrade   float64 `yaml:"upgrade"`
}

// Regions are the screen areas watched during verification.
type Regions struct {
	Selection  Region `yaml:"selection"`
	MenuLeft   Region `yaml:"menuLeft"`
	MenuRight  Region `yaml:"menuRight"`
	PlaceLeft  Region `yaml:"placeLeft"`
	PlaceRight Region `yaml:"placeRight"`
	Currency   Region `yaml:"currency"`
}

// Keys maps logical inputs to keyboard keys.
type Keys struct {
	MonkeyDefault string            `yaml:"monkeyDefault"`
	Hero          string            `yaml:"hero"`
	UpgradePaths  map[string]string `yaml:"upgradePaths"`
}

// OCR configures the external text recognition service.
type OCR struct {
	BaseURL        string
	Timeout        time.Duration
	HealthInterval time.Duration
}

// Mongo configures optional run-history persistence.
type Mongo struct {
	Enabled  bool   `yaml:"enabled"`
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Config is the full global configuration.
type Config struct {
	Browser         Browser
	Timing          Timing
	Retries         Retries
	Thresholds      Thresholds
	Regions         Regions
	RestingPosition Point
	Keys            Keys
	OCR             OCR
	Mongo           Mongo
}

// yamlConfig mirrors Config with string durations for parsing.
type yamlConfig struct {
	Browser    *Browser    `yaml:"browser"`
	Timing     *yamlTiming `yaml:"timing"`
	Retries    *yamlRetry  `yaml:"retries"`
	Thresholds *Thresholds `yaml:"thresholds"`
	Regions    *Regions    `yaml:"regions"`
	Resting    *Point      `yaml:"restingPosition"`
	Keys       *Keys       `yaml:"keys"`
	OCR        *yamlOCR    `yaml:"ocr"`
	Mongo      *Mongo      `yaml:"mongo"`
}

type yamlTiming struct {
	PlacementDelay duration `yaml:"placementDelay"`
	UpgradeDelay   duration `yaml:"upgradeDelay"`
	ClickDelay     duration `yaml:"clickDelay"`
	KeyDelay       duration `yaml:"keyDelay"`
	HeroHold       duration `yaml:"heroHold"`
	CurrencyPoll   duration `yaml:"currencyPoll"`
}

type yamlRetry struct {
	MaxAttempts     int      `yaml:"maxAttempts"`
	RetryDelay      duration `yaml:"retryDelay"`
	CaptureAttempts int      `yaml:"captureAttempts"`
}

type yamlOCR struct {
	BaseURL        string   `yaml:"baseURL"`
	Timeout        duration `yaml:"timeout"`
	HealthInterval duration `yaml:"healthInterval"`
}

// duration is a wrapper for time.Duration that handles YAML parsing.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Default returns the built-in configuration used when a field is absent
// from the settings file.
func Default() *Config {
	return &Config{
		Browser: Browser{Width: 1280, Height: 720},
		Timing: Timing{
			PlacementDelay: 500 * time.Millisecond,
			UpgradeDelay:   400 * time.Millisecond,
			ClickDelay:     150 * time.Millisecond,
			KeyDelay:       120 * time.Millisecond,
			HeroHold:       350 * time.Millisecond,
			CurrencyPoll:   time.Second,
		},
		Retries: Retries{
			MaxAttempts:     3,
			RetryDelay:      500 * time.Millisecond,
			CaptureAttempts: 3,
		},
		Thresholds: Thresholds{
			Selection: 40,
			Targeting: 85,
			Upgrade:   15,
		},
		RestingPosition: Point{X: 640, Y: 690},
		Keys: Keys{
			MonkeyDefault: "q",
			Hero:          "u",
			UpgradePaths: map[string]string{
				"path_1": ",",
				"path_2": ".",
				"path_3": "/",
			},
		},
		OCR: OCR{
			Timeout:        10 * time.Second,
			HealthInterval: 30 * time.Second,
		},
	}
}

// Load parses a YAML settings document over the defaults. Sections
// absent from the document keep their default values.
func Load(data []byte) (*Config, error) {
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	yc.apply(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (yc *yamlConfig) apply(cfg *Config) {
	if yc.Browser != nil {
		cfg.Browser = *yc.Browser
	}
	if yc.Timing != nil {
		t := yc.Timing
		setDuration(&cfg.Timing.PlacementDelay, t.PlacementDelay)
		setDuration(&cfg.Timing.UpgradeDelay, t.UpgradeDelay)
		setDuration(&cfg.Timing.ClickDelay, t.ClickDelay)
		setDuration(&cfg.Timing.KeyDelay, t.KeyDelay)
		setDuration(&cfg.Timing.HeroHold, t.HeroHold)
		setDuration(&cfg.Timing.CurrencyPoll, t.CurrencyPoll)
	}
	if yc.Retries != nil {
		if yc.Retries.MaxAttempts > 0 {
			cfg.Retries.MaxAttempts = yc.Retries.MaxAttempts
		}
		if yc.Retries.CaptureAttempts > 0 {
			cfg.Retries.CaptureAttempts = yc.Retries.CaptureAttempts
		}
		setDuration(&cfg.Retries.RetryDelay, yc.Retries.RetryDelay)
	}
	if yc.Thresholds != nil {
		cfg.Thresholds = *yc.Thresholds
	}
	if yc.Regions != nil {
		cfg.Regions = *yc.Regions
	}
	if yc.Resting != nil {
		cfg.RestingPosition = *yc.Resting
	}
	if yc.Keys != nil {
		if yc.Keys.MonkeyDefault != "" {
			cfg.Keys.MonkeyDefault = yc.Keys.MonkeyDefault
		}
		if yc.Keys.Hero != "" {
			cfg.Keys.Hero = yc.Keys.Hero
		}
		for path, key := range yc.Keys.UpgradePaths {
			cfg.Keys.UpgradePaths[path] = key
		}
	}
	if yc.OCR != nil {
		cfg.OCR.BaseURL = yc.OCR.BaseURL
		setDuration(&cfg.OCR.Timeout, yc.OCR.Timeout)
		setDuration(&cfg.OCR.HealthInterval, yc.OCR.HealthInterval)
	}
	if yc.Mongo != nil {
		cfg.Mongo = *yc.Mongo
	}
}

func setDuration(dst *time.Duration, src duration) {
	if src != 0 {
		*dst = time.Duration(src)
	}
}

func (c *Config) validate() error {
	if c.Retries.MaxAttempts < 1 {
		return fmt.Errorf("retries.maxAttempts must be at least 1, got %d", c.Retries.MaxAttempts)
	}
	if c.Retries.CaptureAttempts < 1 {
		return fmt.Errorf("retries.captureAttempts must be at least 1, got %d", c.Retries.CaptureAttempts)
	}
	for name, t := range map[string]float64{
		"selection": c.Thresholds.Selection,
		"targeting": c.Thresholds.Targeting,
		"upgrade":   c.Thresholds.Upgrade,
	} {
		if t < 0 || t > 100 {
			return fmt.Errorf("thresholds.%s must be within [0,100], got %v", name, t)
		}
	}
	for _, key := range []string{"path_1", "path_2", "path_3"} {
		if c.Keys.UpgradePaths[key] == "" {
			return fmt.Errorf("keys.upgradePaths missing %s", key)
		}
	}
	return nil
}

// PathKey returns the keyboard key bound to an upgrade path.
func (c *Config) PathKey(path string) (string, bool) {
	key, ok := c.Keys.UpgradePaths[path]
	return key, ok
}
