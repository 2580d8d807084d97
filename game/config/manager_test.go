package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/sokoblit/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		StartLevel:  8,
		TickRateHz:  60,
		Levels: map[string][]string{
			"8": {
				"#######",
				"#@ $ .#",
				"#######",
			},
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func writeRawFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

const yamlConfig = `name: YAML World
description: Loaded from YAML
start_level: 11
levels:
  "11":
    - "-#######"
    - "-#@ $ .#"
    - "-#######"
`

func TestNewManager(t *testing.T) {
	t.Run("classic is the default", func(t *testing.T) {
		dir := t.TempDir()
		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)
		writeConfigFile(t, dir, "another", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultID() != "classic" {
			t.Errorf("Expected default 'classic', got '%s'", manager.DefaultID())
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected default config 'Classic', got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("first valid config when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeRawFile(t, dir, "aaa.json", "{not json")
		writeConfigFile(t, dir, "bbb", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultID() != "bbb" {
			t.Errorf("Expected default 'bbb', got '%s'", manager.DefaultID())
		}
	})

	t.Run("built-in world when the directory is empty", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}
		if manager.DefaultID() != BuiltinConfigID {
			t.Errorf("Expected default '%s', got '%s'", BuiltinConfigID, manager.DefaultID())
		}
		if manager.GetDefault() == nil {
			t.Fatal("Expected default config to be available")
		}
		if err := engine.ValidateGameConfig(manager.GetDefault()); err != nil {
			t.Errorf("Built-in config should be valid: %v", err)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "test", createValidConfig())
	writeRawFile(t, dir, "yamlworld.yaml", yamlConfig)
	writeRawFile(t, dir, "short.yml", "name: Short\nmap_file: world.map\n")
	writeRawFile(t, dir, "malformed.json", `{"name": "broken",`)

	noName := createValidConfig()
	noName.Name = ""
	writeConfigFile(t, dir, "noname", noName)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name      string
		config    string
		wantName  string
		wantError error
	}{
		{"json without extension", "test", "Test Config", nil},
		{"json with extension", "test.json", "Test Config", nil},
		{"yaml without extension", "yamlworld", "YAML World", nil},
		{"yaml with extension", "yamlworld.yaml", "YAML World", nil},
		{"yml with map file", "short", "Short", nil},
		{"built-in fallback", BuiltinConfigID, "builtin", nil},
		{"missing", "nope", "", ErrConfigNotFound},
		{"path traversal", "../test", "", ErrConfigNotFound},
		{"malformed", "malformed", "", ErrInvalidConfig},
		{"schema violation", "noname", "", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.config)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("Expected %v, got %v", tt.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if config.Name != tt.wantName {
				t.Errorf("Expected name '%s', got '%s'", tt.wantName, config.Name)
			}
		})
	}

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadConfig("test")
		second, _ := manager.LoadConfig("test.json")
		if first != second {
			t.Error("Expected the cached config to be returned")
		}
	})
}

func TestManager_LoadWorld(t *testing.T) {
	dir := t.TempDir()

	base := make([]byte, engine.MapWidth*engine.MapHeight)
	for i := range base {
		base[i] = byte(engine.TileWall)
	}
	if err := engine.WriteMapFile(filepath.Join(dir, "maps", "world.map.zst"), base); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}

	config := createValidConfig()
	config.MapFile = "maps/world.map.zst"
	writeConfigFile(t, dir, "mapped", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	loaded, err := manager.LoadConfig("mapped")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	world, err := manager.LoadWorld(loaded)
	if err != nil {
		t.Fatalf("Failed to load world: %v", err)
	}
	if len(world) != len(base) {
		t.Fatalf("Expected %d bytes, got %d", len(base), len(world))
	}

	grid := engine.NewTileGrid(engine.MapWidth, engine.MapHeight, world)
	origin, _ := engine.Origin(8)
	// The level 8 overlay replaces the packed walls; outside it they stay.
	if got := grid.TileAt(origin.Add(engine.Point{X: 2, Y: 2})); got != engine.TilePlayerHome {
		t.Errorf("Expected player home from the overlay, got %d", got)
	}
	if got := grid.TileAt(engine.Point{X: 255, Y: 255}); got != engine.TileWall {
		t.Errorf("Expected packed wall outside the overlay, got %d", got)
	}

	t.Run("missing map file", func(t *testing.T) {
		missing := createValidConfig()
		missing.MapFile = "maps/missing.map"
		if _, err := manager.LoadWorld(missing); err == nil {
			t.Error("Expected error for a missing map file")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "beta", createValidConfig())
	writeRawFile(t, dir, "alpha.yaml", yamlConfig)
	writeRawFile(t, dir, "broken.json", "[]")
	writeRawFile(t, dir, "notes.txt", "not a config")
	if err := os.Mkdir(filepath.Join(dir, "maps.json"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}

	alpha, beta := configs[0], configs[1]
	if alpha.ConfigID != "alpha" || alpha.Filename != "alpha.yaml" {
		t.Errorf("Unexpected first config: %+v", alpha)
	}
	if alpha.StartLevel != 11 || alpha.Levels != 1 || alpha.TickRateHz != engine.DefaultTickRateHz {
		t.Errorf("Unexpected alpha details: %+v", alpha)
	}
	if beta.ConfigID != "beta" || beta.Name != "Test Config" || beta.TickRateHz != 60 {
		t.Errorf("Unexpected second config: %+v", beta)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid config", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}

		manager.RefreshCache()
		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("Failed to reload saved config: %v", err)
		}
		if loaded.Name != "Saved" || len(loaded.Levels["8"]) != 3 {
			t.Errorf("Unexpected reloaded config: %+v", loaded)
		}
		if manager.DefaultID() != "saved" {
			t.Errorf("Expected the only config to become default, got '%s'", manager.DefaultID())
		}
	})

	invalid := []struct {
		name   string
		id     string
		mutate func(c *engine.GameConfig)
	}{
		{"missing name", "a", func(c *engine.GameConfig) { c.Name = "" }},
		{"start level out of range", "b", func(c *engine.GameConfig) { c.StartLevel = 23 }},
		{"tick rate too high", "c", func(c *engine.GameConfig) { c.TickRateHz = 5000 }},
		{"no map source", "d", func(c *engine.GameConfig) { c.Levels = nil }},
		{"unknown level key", "e", func(c *engine.GameConfig) { c.Levels["99"] = []string{"#"} }},
		{"bad layout character", "f", func(c *engine.GameConfig) { c.Levels["8"] = []string{"#X#"} }},
		{"reserved name", BuiltinConfigID, func(c *engine.GameConfig) {}},
		{"path in name", "../escape", func(c *engine.GameConfig) {}},
		{"world too large", "g", func(c *engine.GameConfig) { c.MapWidth, c.MapHeight = 1 << 20, 1 << 20 }},
		{"map file outside dir", "h", func(c *engine.GameConfig) { c.MapFile = "../secret.bin" }},
		{"absolute map file", "i", func(c *engine.GameConfig) { c.MapFile = filepath.Join(dir, "secret.bin") }},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)
			err := manager.SaveConfig(tt.id, config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("config%d", id%5+1)
			config, err := manager.LoadConfig(name)
			if err != nil {
				errs <- err
				return
			}
			if config.Name != fmt.Sprintf("Config%d", id%5+1) {
				errs <- fmt.Errorf("%s loaded as %s", name, config.Name)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
}
