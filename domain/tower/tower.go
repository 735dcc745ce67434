// Package tower defines the static tower data consumed by affordability
// checks and hotkey resolution: placement cost strings, per-path upgrade
// cost tables and selection hotkeys.
package tower

import (
	"regexp"
	"strconv"
	"strings"
)

// Cost column order inside an upgrade cost row.
const (
	ColumnEasy = iota
	ColumnMedium
	ColumnHard
	ColumnImpoppable
)

// UpgradeCosts holds the cost of a single upgrade tier, one column per
// difficulty in fixed order: Easy, Medium, Hard, Impoppable.
type UpgradeCosts [4]int

// Tower is one placeable unit as loaded from the tower data file.
type Tower struct {
	// Name is the canonical display name (no numeric suffix).
	Name string

	// Category groups towers (e.g. "Primary", "Military", "Heroes").
	Category string

	// Hotkey is the selection key for this tower.
	Hotkey string

	// Cost is the raw placement cost string, e.g.
	// "$170 ( Easy ) $200 ( Medium ) $215 ( Hard ) $240 ( Impoppable )".
	Cost string

	// Upgrades maps a path key ("path_1".."path_3") to its per-tier cost
	// rows, index 0 being tier 1.
	Upgrades map[string][]UpgradeCosts
}

var (
	costRe   = regexp.MustCompile(`\$(\d+) \( ([^)]+) \)`)
	suffixRe = regexp.MustCompile(`\s+\d+$`)
)

// NormalizeName strips the trailing numeric disambiguator from a display
// name ("Dart Monkey 01" -> "Dart Monkey").
func NormalizeName(name string) string {
	return strings.TrimSpace(suffixRe.ReplaceAllString(name, ""))
}

var difficultyAliases = map[string]string{
	"easy":   "Easy",
	"medium": "Medium",
	"hard":   "Hard",
}

var modeAliases = map[string]string{
	"standard":   "Standard",
	"std":        "Standard",
	"impop":      "Impoppable",
	"impoppable": "Impoppable",
}

// NormalizeDifficultyMode maps free-form difficulty/mode labels from map
// configs onto their canonical forms.
func NormalizeDifficultyMode(difficulty, mode string) (string, string) {
	d := strings.ToLower(strings.TrimSpace(difficulty))
	m := strings.ToLower(strings.TrimSpace(mode))
	normD, ok := difficultyAliases[d]
	if !ok {
		normD = titleCase(difficulty)
	}
	normM, ok := modeAliases[m]
	if !ok {
		normM = titleCase(mode)
	}
	return normD, normM
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ParseCostString extracts the labeled cost blocks from a placement cost
// string into a label -> amount map.
func ParseCostString(cost string) map[string]int {
	costs := make(map[string]int)
	for _, match := range costRe.FindAllStringSubmatch(cost, -1) {
		amount, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		costs[strings.TrimSpace(match[2])] = amount
	}
	return costs
}

// PlacementCost resolves the tower's placement cost for the given
// difficulty and mode. The Impoppable mode combined with Hard difficulty
// selects the dedicated Impoppable column; otherwise the difficulty label
// is used directly, falling back to Medium when absent. The second return
// is false when no applicable cost exists.
func (t *Tower) PlacementCost(difficulty, mode string) (int, bool) {
	costs := ParseCostString(t.Cost)
	normD, normM := NormalizeDifficultyMode(difficulty, mode)
	if normM == "Impoppable" && normD == "Hard" {
		c, ok := costs["Impoppable"]
		return c, ok
	}
	if c, ok := costs[normD]; ok {
		return c, true
	}
	c, ok := costs["Medium"]
	return c, ok
}

// CostColumn returns the upgrade-cost column index for a difficulty/mode
// pair, applying the same Impoppable special case as PlacementCost.
func CostColumn(difficulty, mode string) int {
	normD, normM := NormalizeDifficultyMode(difficulty, mode)
	if normM == "Impoppable" && normD == "Hard" {
		return ColumnImpoppable
	}
	switch normD {
	case "Easy":
		return ColumnEasy
	case "Hard":
		return ColumnHard
	default:
		return ColumnMedium
	}
}

// UpgradeCost resolves the cost of upgrading the given path to the given
// tier (1-based) for a difficulty/mode pair. Returns false when the path
// or tier is not present in the tower data.
func (t *Tower) UpgradeCost(path string, tier int, difficulty, mode string) (int, bool) {
	rows, ok := t.Upgrades[path]
	if !ok {
		return 0, false
	}
	if tier < 1 || tier > len(rows) {
		return 0, false
	}
	return rows[tier-1][CostColumn(difficulty, mode)], true
}
