package service

import (
	"sync"
	"time"

	"github.com/wricardo/sokoblit/game/engine"
)

// MaxAdvanceTicks bounds a single Advance call.
const MaxAdvanceTicks = 10000

// Session represents an active game session. Every engine access goes
// through the session lock, so one tick is one critical section.
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	Realtime  bool
	CreatedAt time.Time

	mu      sync.Mutex
	pending engine.Input

	// accessMu guards lastAccessed apart from mu so reading metadata never
	// waits on a long Advance.
	accessMu     sync.Mutex
	lastAccessed time.Time
}

// Touch records an access at t.
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	s.lastAccessed = t
	s.accessMu.Unlock()
}

// LastAccessed returns the time of the latest Touch.
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessed
}

// Step runs a single tick with in.
func (s *Session) Step(in engine.Input) (engine.TickReport, *engine.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.Engine.Update(in)
	return report, s.Engine.View()
}

// Queue stores an intent for the next realtime tick. Intents queued between
// two ticks merge: the latest direction wins and any toggle sticks.
func (s *Session) Queue(in engine.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Direction != engine.DirNone {
		s.pending.Direction = in.Direction
	}
	s.pending.Toggle = s.pending.Toggle || in.Toggle
}

// StepPending runs one tick with the queued intent and clears it. The view
// is nil when nothing a renderer shows could have changed.
func (s *Session) StepPending() (engine.TickReport, *engine.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.pending
	s.pending = engine.Input{}

	report := s.Engine.Update(in)
	if len(report.Events) == 0 && !s.animating() {
		return report, nil
	}
	return report, s.Engine.View()
}

// Advance runs ticks: the first one with opts.Input and the rest empty.
// With UntilIdle it keeps going, up to MaxAdvanceTicks, until the active
// agent stops and the zoom settles.
func (s *Session) Advance(opts AdvanceOptions) *StepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticks := opts.Ticks
	if ticks < 1 {
		ticks = 1
	}

	result := &StepResult{}
	in := opts.Input
	for i := 0; i < MaxAdvanceTicks; i++ {
		if i >= ticks && (!opts.UntilIdle || !s.animating()) {
			break
		}
		report := s.Engine.Update(in)
		in = engine.Input{}
		result.Ticks++
		result.Events = append(result.Events, report.Events...)
	}

	result.Tick = s.Engine.Tick()
	result.View = s.Engine.View()
	return result
}

// ResetLevel restarts one level; zero means the active level.
func (s *Session) ResetLevel(id engine.LevelID) (*engine.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == 0 {
		id = s.Engine.ActiveLevel()
	}
	if err := s.Engine.ResetLevel(id); err != nil {
		return nil, err
	}
	return s.Engine.View(), nil
}

// View returns the current render snapshot.
func (s *Session) View() *engine.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Engine.View()
}

// animating reports whether the next empty tick would change the view.
// Callers hold the lock.
func (s *Session) animating() bool {
	switch s.Engine.Mode() {
	case engine.ModeTransitionToPlay, engine.ModeTransitionToOverview:
		return true
	}
	if p := s.Engine.Player(s.Engine.ActiveLevel()); p != nil && p.Moving() {
		return true
	}
	return false
}
