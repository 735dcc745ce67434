package tower

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
)

// jsonTowerFile is the JSON structure of a tower data file: categories
// mapping tower names to their entries.
type jsonTowerFile map[string]map[string]jsonTower

type jsonTower struct {
	Name     string           `json:"name"`
	Hotkey   string           `json:"hotkey"`
	Cost     string           `json:"cost"`
	Upgrades map[string][][4]int `json:"upgrades"`
}

// Loader handles loading tower data into a registry.
type Loader struct {
	registry *Registry
}

// NewLoader creates a new tower loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads tower definitions from an embedded or real filesystem.
// It expects JSON files in a "towers" subdirectory.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "towers")
	if err != nil {
		return fmt.Errorf("failed to read towers directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		if err := l.loadFile(fsys, "towers/"+entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read tower file %s: %w", path, err)
	}

	var file jsonTowerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse tower file %s: %w", path, err)
	}

	for category, towers := range file {
		for key, jt := range towers {
			l.registry.Register(convertJSONTower(key, category, &jt))
		}
	}

	return nil
}

func convertJSONTower(key, category string, jt *jsonTower) *Tower {
	name := jt.Name
	if name == "" {
		name = key
	}

	t := &Tower{
		Name:     name,
		Category: category,
		Hotkey:   jt.Hotkey,
		Cost:     jt.Cost,
		Upgrades: make(map[string][]UpgradeCosts, len(jt.Upgrades)),
	}

	for path, rows := range jt.Upgrades {
		converted := make([]UpgradeCosts, len(rows))
		for i, row := range rows {
			converted[i] = UpgradeCosts(row)
		}
		t.Upgrades[path] = converted
	}

	return t
}
