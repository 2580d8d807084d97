package engine

import "fmt"

// Mode is the session-wide presentation mode.
type Mode uint8

const (
	ModePlay Mode = iota
	ModeTransitionToOverview
	ModeOverview
	ModeTransitionToPlay
)

var modeNames = map[Mode]string{
	ModePlay:                 "play",
	ModeTransitionToOverview: "to_overview",
	ModeOverview:             "overview",
	ModeTransitionToPlay:     "to_play",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	for mode, name := range modeNames {
		if name == string(text) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidMode, text)
}

// ModeMachine drives the zoom transition between play and the level
// overview. Progress runs from 0 (play, zoomed in) to ProgressMax (overview).
type ModeMachine struct {
	mode     Mode
	progress int
}

// NewModeMachine starts zooming out from play, which is how a session opens.
func NewModeMachine() *ModeMachine {
	return &ModeMachine{mode: ModeTransitionToOverview}
}

// Mode returns the current mode.
func (m *ModeMachine) Mode() Mode { return m.mode }

// Progress returns the raw transition progress.
func (m *ModeMachine) Progress() int { return m.progress }

// Update advances a running transition by one step and then applies a
// toggle request. Toggles are only honoured in the two stable modes.
// It reports whether the mode changed.
func (m *ModeMachine) Update(toggle bool) bool {
	before := m.mode

	switch m.mode {
	case ModeTransitionToPlay:
		m.progress--
		if m.progress <= 0 {
			m.progress = 0
			m.mode = ModePlay
		}
	case ModeTransitionToOverview:
		m.progress++
		if m.progress >= ProgressMax {
			m.progress = ProgressMax
			m.mode = ModeOverview
		}
	}

	if toggle {
		switch m.mode {
		case ModeOverview:
			m.mode = ModeTransitionToPlay
		case ModePlay:
			m.mode = ModeTransitionToOverview
		}
	}

	return m.mode != before
}

// NavigationOpen reports whether level selection input is accepted.
func (m *ModeMachine) NavigationOpen() bool {
	return m.mode == ModeOverview && m.progress == ProgressMax
}

// GameplayOpen reports whether movement input is accepted.
func (m *ModeMachine) GameplayOpen() bool {
	return m.mode == ModePlay && m.progress == 0
}

// Zoom is the progress clamped for renderers.
func (m *ModeMachine) Zoom() int {
	if m.progress > ProgressMax {
		return ProgressMax
	}
	if m.progress < 0 {
		return 0
	}
	return m.progress
}
