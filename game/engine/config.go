package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MaxTickRateHz caps the realtime runner.
	MaxTickRateHz = 1000
	// Smallest world that still holds every level region.
	MinWorldWidth  = 5 * LevelWidth
	MinWorldHeight = 5 * LevelHeight
	// Largest world a config may ask for.
	MaxWorldWidth  = 1024
	MaxWorldHeight = 1024
)

// ValidWorldSize reports whether a width x height world is within limits.
func ValidWorldSize(width, height int) bool {
	return width > 0 && height > 0 && width <= MaxWorldWidth && height <= MaxWorldHeight
}

// WorldSize returns the configured map size, defaulting to 256x256.
func (c *GameConfig) WorldSize() (int, int) {
	w, h := c.MapWidth, c.MapHeight
	if w == 0 {
		w = MapWidth
	}
	if h == 0 {
		h = MapHeight
	}
	return w, h
}

// Start returns the configured start level, defaulting to level 8.
func (c *GameConfig) Start() LevelID {
	if c.StartLevel == 0 {
		return DefaultStartLevel
	}
	return LevelID(c.StartLevel)
}

// TickRate returns the realtime tick rate, defaulting to 100Hz.
func (c *GameConfig) TickRate() int {
	if c.TickRateHz == 0 {
		return DefaultTickRateHz
	}
	return c.TickRateHz
}

// LevelLayouts converts the text layouts to level ids.
func (c *GameConfig) LevelLayouts() (map[LevelID][]string, error) {
	out := make(map[LevelID][]string, len(c.Levels))
	for key, rows := range c.Levels {
		id, err := ParseLevelID(key)
		if err != nil {
			return nil, err
		}
		out[id] = rows
	}
	return out, nil
}

// ValidateGameConfig checks a world config for correctness.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	w, h := config.WorldSize()
	if w < MinWorldWidth || h < MinWorldHeight {
		return fmt.Errorf("%w: world must be at least %dx%d cells, got %dx%d",
			ErrInvalidConfig, MinWorldWidth, MinWorldHeight, w, h)
	}
	if !ValidWorldSize(w, h) {
		return fmt.Errorf("%w: world must be at most %dx%d cells, got %dx%d",
			ErrInvalidConfig, MaxWorldWidth, MaxWorldHeight, w, h)
	}

	if config.StartLevel != 0 && !LevelID(config.StartLevel).Valid() {
		return fmt.Errorf("%w: start_level must be between 1 and %d, got %d",
			ErrInvalidConfig, LevelCount, config.StartLevel)
	}
	if config.TickRateHz < 0 || config.TickRateHz > MaxTickRateHz {
		return fmt.Errorf("%w: tick_rate_hz must be between 0 and %d, got %d",
			ErrInvalidConfig, MaxTickRateHz, config.TickRateHz)
	}

	if config.MapFile != "" && !filepath.IsLocal(config.MapFile) {
		return fmt.Errorf("%w: map_file must be a relative path inside the config directory, got %q",
			ErrInvalidConfig, config.MapFile)
	}

	if config.MapFile == "" && len(config.Levels) == 0 {
		return fmt.Errorf("%w: either map_file or levels is required", ErrInvalidConfig)
	}

	layouts, err := config.LevelLayouts()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for id, rows := range layouts {
		if err := ValidateLayout(rows); err != nil {
			return fmt.Errorf("%w: level %d: %v", ErrInvalidConfig, id, err)
		}
	}

	if config.MapFile == "" {
		if _, ok := layouts[config.Start()]; !ok {
			return fmt.Errorf("%w: start level %d has no layout", ErrInvalidConfig, config.Start())
		}
	}

	return nil
}

// LoadGameConfig loads a config from a JSON or YAML file, chosen by
// extension, and validates it.
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(filename), err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseGameConfig decodes a config. ext selects YAML for ".yaml" and
// ".yml"; anything else is treated as JSON.
func ParseGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// DefaultGameConfig is a small built-in world used when no config
// directory is available.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "builtin",
		Description: "Two small built-in levels",
		StartLevel:  DefaultStartLevel,
		Levels: map[string][]string{
			"8": {
				"#########",
				"#@  $  .#",
				"#   #   #",
				"# $   . #",
				"#########",
			},
			"11": {
				"-#######",
				"-#@ $ .#",
				"-#######",
			},
		},
	}
}
