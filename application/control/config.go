package control

import (
	"time"

	"popbot/application/vision"
	"popbot/domain/gamemap"
)

// Config carries the regions, thresholds and keys the controllers work
// with.
type Config struct {
	// SelectionRegion is watched while selecting a tower from the shop.
	SelectionRegion vision.Region

	// MenuLeft and MenuRight are the two possible entity menu areas.
	// The menu opens on the side opposite the entity.
	MenuLeft  vision.Region
	MenuRight vision.Region

	// PlaceLeft and PlaceRight are the two side panels watched while a
	// placement click is confirmed. A landed entity redraws one of
	// them, which side depends on where it landed.
	PlaceLeft  vision.Region
	PlaceRight vision.Region

	// Resting is where the cursor parks after every operation so it
	// never sits inside a diff region.
	Resting gamemap.Position

	// Thresholds are the minimum percent diffs for confirmation.
	SelectionThreshold float64
	TargetingThreshold float64
	UpgradeThreshold   float64

	// Policy bounds every verification loop.
	Policy vision.Policy

	// MonkeyDefaultKey selects a tower whose hotkey is unknown.
	MonkeyDefaultKey string

	// HeroKey selects the hero. Hero selection holds the key rather
	// than tapping it.
	HeroKey  string
	HeroHold time.Duration

	// CloseMenuKey dismisses an open entity menu.
	CloseMenuKey string

	// PathKeys maps upgrade path keys to keyboard keys.
	PathKeys map[string]string
}

// DefaultConfig returns controller settings matching the stock game
// layout at 1280x720.
func DefaultConfig() Config {
	return Config{
		SelectionRegion:    vision.Region{Left: 1050, Top: 120, Width: 200, Height: 500},
		MenuLeft:           vision.Region{Left: 10, Top: 110, Width: 340, Height: 540},
		MenuRight:          vision.Region{Left: 930, Top: 110, Width: 340, Height: 540},
		PlaceLeft:          vision.Region{Left: 23, Top: 43, Width: 253, Height: 583},
		PlaceRight:         vision.Region{Left: 840, Top: 40, Width: 250, Height: 587},
		Resting:            gamemap.Position{X: 640, Y: 690},
		SelectionThreshold: 40,
		TargetingThreshold: 85,
		UpgradeThreshold:   15,
		Policy: vision.Policy{
			MaxAttempts: 3,
			SettleDelay: 300 * time.Millisecond,
			RetryDelay:  500 * time.Millisecond,
		},
		MonkeyDefaultKey: "q",
		HeroKey:          "u",
		HeroHold:         350 * time.Millisecond,
		CloseMenuKey:     "Escape",
		PathKeys: map[string]string{
			"path_1": ",",
			"path_2": ".",
			"path_3": "/",
		},
	}
}
