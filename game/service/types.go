package service

import (
	"time"

	"github.com/wricardo/sokoblit/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Realtime       bool               `json:"realtime"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Tick           uint64             `json:"tick"`
	Level          engine.LevelID     `json:"level"`
	Mode           engine.Mode        `json:"mode"`
	View           *engine.View       `json:"view,omitempty"`
	GameConfig     *engine.GameConfig `json:"game_config,omitempty"`
}

// AdvanceOptions controls a manual step. Input is applied on the first of
// Ticks only. UntilIdle keeps ticking past Ticks until the agent stops and
// the zoom transition has finished.
type AdvanceOptions struct {
	Ticks     int          `json:"ticks"`
	Input     engine.Input `json:"input"`
	UntilIdle bool         `json:"until_idle,omitempty"`
}

// StepResult contains the outcome of one or more ticks
type StepResult struct {
	Ticks  int            `json:"ticks"`
	Tick   uint64         `json:"tick"`
	Queued bool           `json:"queued,omitempty"`
	Events []engine.Event `json:"events"`
	View   *engine.View   `json:"view"`
}

// ConfigInfo provides information about a world configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	MapFile     string `json:"map_file,omitempty"`
	StartLevel  int    `json:"start_level"`
	Levels      int    `json:"levels"`
	TickRateHz  int    `json:"tick_rate_hz"`
}
