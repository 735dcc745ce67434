package gamemap

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlMap is the YAML structure for map plan files.
type yamlMap struct {
	Name       string       `yaml:"name"`
	Difficulty string       `yaml:"difficulty"`
	Mode       string       `yaml:"mode"`
	Hero       *yamlHero    `yaml:"hero,omitempty"`
	PrePlay    []yamlAction `yaml:"pre_play,omitempty"`
	Actions    []yamlAction `yaml:"actions"`
	Timing     *yamlTiming  `yaml:"timing,omitempty"`
}

type yamlHero struct {
	Name     string       `yaml:"name"`
	Position yamlPosition `yaml:"position"`
}

type yamlAction struct {
	Step     int           `yaml:"step"`
	Kind     string        `yaml:"kind"`
	Target   string        `yaml:"target"`
	Position *yamlPosition `yaml:"position,omitempty"`

	// UpgradePath maps a path key to a tier, e.g. {path_3: 1}. A well
	// formed upgrade carries exactly one key.
	UpgradePath map[string]int `yaml:"upgrade_path,omitempty"`
}

type yamlPosition struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type yamlTiming struct {
	PlacementDelay duration `yaml:"placementDelay,omitempty"`
	UpgradeDelay   duration `yaml:"upgradeDelay,omitempty"`
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

// Loader handles loading map plans from various sources.
type Loader struct {
	registry *Registry
}

// NewLoader creates a new map loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads map plans from an embedded or real filesystem. It
// expects YAML files in a "maps" subdirectory.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "maps")
	if err != nil {
		return fmt.Errorf("failed to read maps directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		if err := l.loadFile(fsys, "maps/"+entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

// loadFile loads a single map plan file.
func (l *Loader) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read map file %s: %w", path, err)
	}

	var ym yamlMap
	if err := yaml.Unmarshal(data, &ym); err != nil {
		return fmt.Errorf("failed to parse map file %s: %w", path, err)
	}

	l.registry.Register(convertYAMLMap(&ym))

	return nil
}

// convertYAMLMap converts a YAML map plan to a domain MapConfig.
func convertYAMLMap(ym *yamlMap) *MapConfig {
	m := &MapConfig{
		Name:       ym.Name,
		Difficulty: ym.Difficulty,
		Mode:       ym.Mode,
		PrePlay:    make([]Action, len(ym.PrePlay)),
		Actions:    make([]Action, len(ym.Actions)),
	}

	if ym.Hero != nil {
		m.Hero = &Hero{
			Name:     ym.Hero.Name,
			Position: Position{X: ym.Hero.Position.X, Y: ym.Hero.Position.Y},
		}
	}

	for i, ya := range ym.PrePlay {
		m.PrePlay[i] = convertYAMLAction(&ya)
	}
	for i, ya := range ym.Actions {
		m.Actions[i] = convertYAMLAction(&ya)
	}

	if ym.Timing != nil {
		m.Timing = Timing{
			PlacementDelay: time.Duration(ym.Timing.PlacementDelay),
			UpgradeDelay:   time.Duration(ym.Timing.UpgradeDelay),
		}
	}

	return m
}

func convertYAMLAction(ya *yamlAction) Action {
	action := Action{
		Step:   ya.Step,
		Kind:   ActionKind(ya.Kind),
		Target: ya.Target,
	}

	if ya.Position != nil {
		action.Position = &Position{X: ya.Position.X, Y: ya.Position.Y}
	}

	// An upgrade_path with anything other than exactly one recognized
	// key is ambiguous. Path stays empty so validation rejects the
	// action instead of guessing.
	if len(ya.UpgradePath) == 1 {
		for key, tier := range ya.UpgradePath {
			if validPath(key) {
				action.Path = key
				action.Tier = tier
			}
		}
	}

	return action
}
