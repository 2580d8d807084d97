package engine

import "fmt"

// Engine provides the main interface for a running world.
type Engine interface {
	// Tick
	Update(in Input) TickReport
	Tick() uint64

	// Render
	View() *View

	// Session state
	ActiveLevel() LevelID
	Mode() Mode
	Progress() int
	Player(id LevelID) *Player
	Grid() *TileGrid
	Config() *GameConfig

	// Level restart
	ResetLevel(id LevelID) error
}

// GameEngine owns one world: its tiles, one agent per level and the mode
// machine. It is not safe for concurrent use; callers serialise ticks.
type GameEngine struct {
	config  *GameConfig
	grid    *TileGrid
	modes   *ModeMachine
	level   LevelID
	players [LevelCount + 1]*Player
	tick    uint64
}

// NewEngine builds an engine over a copy of the authored map. A nil or
// short map yields a degraded engine whose grid reads as out of bounds and
// whose levels have no agents.
func NewEngine(config *GameConfig, authored []byte) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	w, h := config.WorldSize()
	e := &GameEngine{
		config: config,
		grid:   NewTileGrid(w, h, authored),
		modes:  NewModeMachine(),
		level:  config.Start(),
	}
	for id := LevelID(1); id <= LevelCount; id++ {
		e.players[id] = e.spawnPlayer(id)
	}
	return e, nil
}

// NewEngineWithDefaults builds an engine over the built-in world.
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	authored, err := LoadWorld(config, "")
	if err != nil {
		panic(fmt.Sprintf("built-in world: %v", err))
	}
	e, err := NewEngine(config, authored)
	if err != nil {
		panic(fmt.Sprintf("built-in world: %v", err))
	}
	return e
}

// spawnPlayer places an agent on the first player home of the level,
// scanning logical tiles row by row.
func (e *GameEngine) spawnPlayer(id LevelID) *Player {
	bounds, ok := Bounds(id)
	if !ok {
		return nil
	}
	home, ok := FindTile(e.grid, bounds, TilePlayerHome)
	if !ok {
		return nil
	}
	return NewPlayer(home)
}

// Update runs one tick: mode transition, overview navigation, agent
// animation with crate commits, then gameplay input.
func (e *GameEngine) Update(in Input) TickReport {
	e.tick++
	report := TickReport{Tick: e.tick}

	if e.modes.Update(in.Toggle) {
		mode := e.modes.Mode()
		report.Events = append(report.Events, Event{
			Type:  EventModeChanged,
			Tick:  e.tick,
			Level: e.level,
			Mode:  &mode,
		})
	}

	if e.modes.NavigationOpen() {
		if next, ok := Neighbor(e.level, in.Direction); ok {
			e.level = next
			report.Events = append(report.Events, Event{
				Type:      EventLevelSelected,
				Tick:      e.tick,
				Level:     next,
				Direction: in.Direction,
			})
		}
	}

	for id := LevelID(1); id <= LevelCount; id++ {
		report.Events = append(report.Events, e.advancePlayer(id)...)
	}

	if e.modes.GameplayOpen() {
		if ev, ok := e.handleMove(in.Direction); ok {
			report.Events = append(report.Events, ev)
		}
	}

	return report
}

// advancePlayer steps one agent's animation and parks its crate when a
// push completes.
func (e *GameEngine) advancePlayer(id LevelID) []Event {
	p := e.players[id]
	if p == nil || !p.Moving() {
		return nil
	}

	pushing := p.Pushing()
	p.Update()
	if p.Moving() {
		return nil
	}

	var events []Event
	if pushing {
		origin, _ := Origin(id)
		rest := origin.Add(p.Location()).Add(p.Facing().Delta().Scale(LogicalTile))
		e.grid.SetLogicalTile(rest, TileCrate)
		events = append(events, Event{
			Type:      EventCrateParked,
			Tick:      e.tick,
			Level:     id,
			Direction: p.Facing(),
			Position:  &rest,
		})
	}

	loc := p.Location()
	events = append(events, Event{
		Type:      EventMoveFinished,
		Tick:      e.tick,
		Level:     id,
		Direction: p.Facing(),
		Position:  &loc,
	})
	return events
}

// handleMove applies a movement intent to the active level's agent. Inputs
// are dropped while the agent moves or when the clamp rejects them, so a
// rejected push never disturbs the grid.
func (e *GameEngine) handleMove(dir Direction) (Event, bool) {
	p := e.players[e.level]
	if p == nil || !dir.Valid() || p.Moving() || !p.CanMove(dir) {
		return Event{}, false
	}

	bounds, _ := Bounds(e.level)
	decision := Evaluate(e.grid, bounds, p.Location(), dir)
	if !p.Move(dir, decision == MoveBlocked, decision == MovePush) {
		return Event{}, false
	}

	ev := Event{Tick: e.tick, Level: e.level, Direction: dir}
	switch decision {
	case MoveBlocked:
		ev.Type = EventBump
	case MovePush:
		ev.Type = EventPushStarted
	default:
		ev.Type = EventMoveStarted
	}
	loc := p.Location()
	ev.Position = &loc
	return ev, true
}

// ResetLevel restores a level's authored tiles and respawns its agent.
func (e *GameEngine) ResetLevel(id LevelID) error {
	bounds, ok := Bounds(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, id)
	}
	e.grid.ResetRegion(bounds)
	e.players[id] = e.spawnPlayer(id)
	return nil
}

// View returns the render snapshot for the active level.
func (e *GameEngine) View() *View {
	bounds, _ := Bounds(e.level)
	zoom := e.modes.Zoom()

	v := &View{
		Tick:      e.tick,
		Level:     e.level,
		Origin:    Point{X: bounds.X, Y: bounds.Y},
		Mode:      e.modes.Mode(),
		Progress:  e.modes.Progress(),
		Zoom:      zoom,
		Alpha:     Alpha(zoom),
		Tiles:     e.grid.Region(bounds),
		Highlight: LevelRect(e.level, zoom),
		Transform: MapTransform(e.level, zoom),
	}
	if p := e.players[e.level]; p != nil {
		v.Player = p.View()
	}
	return v
}

// Tick returns the number of Update calls so far.
func (e *GameEngine) Tick() uint64 { return e.tick }

// ActiveLevel returns the level being played or highlighted.
func (e *GameEngine) ActiveLevel() LevelID { return e.level }

// Mode returns the session mode.
func (e *GameEngine) Mode() Mode { return e.modes.Mode() }

// Progress returns the transition progress.
func (e *GameEngine) Progress() int { return e.modes.Progress() }

// Player returns the agent of a level, or nil when the level has none.
func (e *GameEngine) Player(id LevelID) *Player {
	if !id.Valid() {
		return nil
	}
	return e.players[id]
}

// Grid returns the live tile grid.
func (e *GameEngine) Grid() *TileGrid { return e.grid }

// Config returns the world config.
func (e *GameEngine) Config() *GameConfig { return e.config }
