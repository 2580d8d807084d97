package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wricardo/sokoblit/game/engine"
	"github.com/wricardo/sokoblit/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is tried first when picking the default configuration.
const DefaultConfigID = "classic"

// BuiltinConfigID names engine.DefaultGameConfig when no file is usable.
const BuiltinConfigID = "builtin"

// Supported config file extensions, in lookup order.
var extensions = []string{".json", ".yaml", ".yml"}

//go:embed schema.json
var schemaJSON string

var configSchema = jsonschema.MustCompileString("schema.json", schemaJSON)

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultID     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name, with or without extension
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findConfigFile(name)
	if err != nil {
		if err == ErrConfigNotFound && id == BuiltinConfigID {
			return m.cacheBuiltin(), nil
		}
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseGameConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	// Cache the config
	m.configs[id] = config
	return config, nil
}

// LoadWorld builds the authored world for config. Map files are resolved
// relative to the config directory.
func (m *Manager) LoadWorld(config *engine.GameConfig) ([]byte, error) {
	return engine.LoadWorld(config, m.configDir)
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true
		configs = append(configs, configInfo(entry.Name(), id, config))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// DefaultID returns the identifier of the default configuration
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = configID(name)
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and picks the default again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// SaveConfig validates config and writes it as <name>.json
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id == BuiltinConfigID {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}

	// Validate config before saving
	if err := ValidateConfig(config); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// ValidateConfig checks config against the embedded schema and then the
// engine's semantic rules.
func ValidateConfig(config *engine.GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	// Validate the encoded form so the schema sees exactly the wire fields.
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if err := configSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// loadDefaultConfig picks classic, then the first valid config, then the
// built-in world.
func (m *Manager) loadDefaultConfig() {
	id := DefaultConfigID
	config, err := m.LoadConfig(id)
	if err != nil {
		id = BuiltinConfigID
		config = nil
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			id = configs[0].ConfigID
			config, _ = m.LoadConfig(configs[0].Filename)
		}
		if config == nil {
			id = BuiltinConfigID
			config, _ = m.LoadConfig(BuiltinConfigID)
		}
	}

	m.mu.Lock()
	m.defaultID = id
	m.defaultConfig = config
	m.mu.Unlock()
}

// cacheBuiltin stores the built-in world. Callers hold the write lock.
func (m *Manager) cacheBuiltin() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	m.configs[BuiltinConfigID] = config
	return config
}

// findConfigFile resolves name to a file in the config directory. Callers
// hold the lock.
func (m *Manager) findConfigFile(name string) (string, error) {
	candidates := []string{name}
	if !supported(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(m.configDir, candidate)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat config file: %w", err)
		}
	}
	return "", ErrConfigNotFound
}

func configInfo(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	levels := len(config.Levels)
	if config.MapFile != "" {
		levels = engine.LevelCount
	}
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		MapFile:     config.MapFile,
		StartLevel:  int(config.Start()),
		Levels:      levels,
		TickRateHz:  config.TickRate(),
	}
}

// configID strips a supported extension from name.
func configID(name string) string {
	if supported(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
