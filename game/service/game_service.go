package service

import (
	"context"

	"github.com/wricardo/sokoblit/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, realtime bool) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SendInput(ctx context.Context, sessionID string, input engine.Input) (*StepResult, error)
	Advance(ctx context.Context, sessionID string, opts AdvanceOptions) (*StepResult, error)
	ResetLevel(ctx context.Context, sessionID string, level engine.LevelID) (*engine.View, error)

	// Game State
	GetView(ctx context.Context, sessionID string) (*engine.View, error)
	ListLevels(ctx context.Context) ([]engine.LevelInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, opts SessionOptions) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles world configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	LoadWorld(config *engine.GameConfig) ([]byte, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	DefaultID() string
	SaveConfig(name string, config *engine.GameConfig) error
}

// SessionObserver is told about every tick that produced a new view.
type SessionObserver interface {
	SessionUpdated(sessionID string, view *engine.View, events []engine.Event)
}

// SessionOptions carries what a session manager needs to build a session.
type SessionOptions struct {
	ConfigID string
	Config   *engine.GameConfig
	World    []byte
	Realtime bool
}
