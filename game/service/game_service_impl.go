package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/wricardo/sokoblit/game/engine"
)

// ErrInvalidRequest is returned for out-of-range request parameters.
var ErrInvalidRequest = errors.New("invalid request")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	observers []SessionObserver
	mu        sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, observers ...SessionObserver) GameService {
	return &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		observers: observers,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return s.configs.DefaultID()
	}
	return configName
}

// CreateSession creates a new game session. A world whose map cannot be
// loaded still gets a session; its grid stays uninitialised.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, realtime bool) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	world, err := s.configs.LoadWorld(config)
	if err != nil {
		log.Printf("Warning: world for config %s unavailable, session runs degraded: %v", configID, err)
	}

	session, err := s.sessions.Create("", SessionOptions{
		ConfigID: configID,
		Config:   config,
		World:    world,
		Realtime: realtime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session, true), nil
}

// configError adds the available config ids to a not-found error.
func (s *gameServiceImpl) configError(configName string, err error) error {
	if !errors.Is(err, ErrConfigNotFound) {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
	}
	return fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
}

func (s *gameServiceImpl) sessionInfo(session *Session, withView bool) *SessionInfo {
	view := session.View()
	info := &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		Realtime:       session.Realtime,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessed(),
		Tick:           view.Tick,
		Level:          view.Level,
		Mode:           view.Mode,
	}
	if info.ConfigName == "" {
		info.ConfigName = s.getConfigID(session.Config.Name)
	}
	if withView {
		info.View = view
		info.GameConfig = session.Config
	}
	return info
}

// getSession looks a session up and marks it accessed.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, true), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, false))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// SendInput delivers one intent. Realtime sessions queue it for the next
// runner tick; manual sessions run a tick right away.
func (s *gameServiceImpl) SendInput(ctx context.Context, sessionID string, input engine.Input) (*StepResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Realtime {
		sess.Queue(input)
		view := sess.View()
		return &StepResult{Tick: view.Tick, Queued: true, Events: []engine.Event{}, View: view}, nil
	}

	report, view := sess.Step(input)
	s.notify(sess.ID, view, report.Events)
	return &StepResult{Ticks: 1, Tick: report.Tick, Events: nonNil(report.Events), View: view}, nil
}

// Advance runs a number of ticks on a session
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, opts AdvanceOptions) (*StepResult, error) {
	if opts.Ticks < 0 || opts.Ticks > MaxAdvanceTicks {
		return nil, fmt.Errorf("%w: ticks must be between 0 and %d, got %d", ErrInvalidRequest, MaxAdvanceTicks, opts.Ticks)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := sess.Advance(opts)
	result.Events = nonNil(result.Events)
	s.notify(sess.ID, result.View, result.Events)
	return result, nil
}

// ResetLevel restarts a level of a session; zero restarts the active one.
func (s *gameServiceImpl) ResetLevel(ctx context.Context, sessionID string, level engine.LevelID) (*engine.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	view, err := sess.ResetLevel(level)
	if err != nil {
		return nil, err
	}
	s.notify(sess.ID, view, nil)
	return view, nil
}

// GetView returns the current render snapshot of a session
func (s *gameServiceImpl) GetView(ctx context.Context, sessionID string) (*engine.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.View(), nil
}

// ListLevels returns the level table
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]engine.LevelInfo, error) {
	return engine.Levels(), nil
}

// ListConfigs returns available world configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific world configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a world configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) notify(sessionID string, view *engine.View, events []engine.Event) {
	for _, o := range s.observers {
		o.SessionUpdated(sessionID, view, events)
	}
}

func nonNil(events []engine.Event) []engine.Event {
	if events == nil {
		return []engine.Event{}
	}
	return events
}
