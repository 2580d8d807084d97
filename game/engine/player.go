package engine

// Player is the agent for a single level. Location is in cells relative to
// the level origin and always lands on a logical tile boundary.
type Player struct {
	location Point
	facing   Direction
	steps    int
	blocked  bool
	pushing  bool
	delay    int
}

// NewPlayer places an idle agent facing down at location.
func NewPlayer(location Point) *Player {
	return &Player{location: location, facing: DirDown, delay: AnimationDelay}
}

// Location returns the agent's cell relative to its level origin.
func (p *Player) Location() Point { return p.location }

// Facing returns the last accepted direction.
func (p *Player) Facing() Direction { return p.facing }

// Steps returns the pixels of animation left for the current move.
func (p *Player) Steps() int { return p.steps }

// Blocked reports whether the current move is a bump.
func (p *Player) Blocked() bool { return p.blocked }

// Pushing reports whether the current move drags a crate.
func (p *Player) Pushing() bool { return p.pushing }

// Moving reports whether a move is still animating.
func (p *Player) Moving() bool { return p.steps > 0 }

// CanMove applies the interior clamp for a move in dir from the current
// location. The comparisons keep the agent off the outer ring of cells.
func (p *Player) CanMove(dir Direction) bool {
	switch dir {
	case DirDown:
		return p.location.Y < LevelHeight-2
	case DirLeft:
		return p.location.X > 1
	case DirUp:
		return p.location.Y > 1
	case DirRight:
		return p.location.X < LevelWidth-2
	}
	return false
}

// Move starts a move. It is ignored while a move is animating, for invalid
// directions and when the clamp rejects it; in those cases nothing changes
// and Move returns false.
func (p *Player) Move(dir Direction, blocked, pushing bool) bool {
	if p.Moving() || !p.CanMove(dir) {
		return false
	}

	if !blocked {
		p.location = p.location.Add(dir.Delta().Scale(LogicalTile))
	}
	p.facing = dir
	p.steps = MoveSteps
	p.blocked = blocked
	p.pushing = pushing && !blocked
	p.delay = AnimationDelay
	return true
}

// Update advances the animation. Steps drop by two on every third call, so a
// full move takes 24 calls. Flags clear when the animation ends.
func (p *Player) Update() {
	if !p.Moving() {
		return
	}

	if p.delay > 0 {
		p.delay--
		return
	}
	p.delay = AnimationDelay

	p.steps -= 2
	if p.steps <= 0 {
		p.steps = 0
		p.blocked = false
		p.pushing = false
	}
}

// PixelOffset is the render offset of the sprite from its cell: the agent
// trails its destination by the remaining steps. A bump never leaves its
// cell, so a blocked move stays at zero offset for its whole animation
// instead of sliding in from the neighbouring cell.
func (p *Player) PixelOffset() Point {
	if !p.Moving() || p.blocked {
		return Point{}
	}
	return p.facing.Delta().Scale(-p.steps)
}

// CrateOffset is the pixel offset, relative to the agent's cell, of a crate
// being pushed. The crate is drawn one logical tile ahead of the agent along
// the facing direction, which is where the push parks it, rather than
// trailing behind. It returns false when no push is in progress.
func (p *Player) CrateOffset() (Point, bool) {
	if !p.Moving() || !p.pushing {
		return Point{}, false
	}
	return p.PixelOffset().Add(p.facing.Delta().Scale(LogicalTile * CellPixels)), true
}

// SpriteFrame picks the walk-cycle frame for the current step.
func (p *Player) SpriteFrame() int {
	return (p.steps % 3) * 2
}

// View returns a copy of the agent's render state.
func (p *Player) View() *PlayerView {
	v := &PlayerView{
		Location:    p.location,
		Facing:      p.facing,
		Steps:       p.steps,
		Blocked:     p.blocked,
		Pushing:     p.pushing,
		PixelOffset: p.PixelOffset(),
		Frame:       p.SpriteFrame(),
	}
	if off, ok := p.CrateOffset(); ok {
		v.CrateOffset = &off
	}
	return v
}
