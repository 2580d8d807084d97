package engine

// Decision is the outcome of evaluating a move against the level layout.
type Decision int

const (
	// MoveFree means the target tile can be entered.
	MoveFree Decision = iota
	// MoveBlocked means the player bumps in place.
	MoveBlocked
	// MovePush means the target crate moves ahead of the player. The target
	// tile has already been reset when Evaluate returns.
	MovePush
)

func (d Decision) String() string {
	switch d {
	case MoveFree:
		return "free"
	case MoveBlocked:
		return "blocked"
	case MovePush:
		return "push"
	}
	return "unknown"
}

// solid reports whether a tile stops a crate or the player. Anything the
// grid reports outside its bounds counts as a wall.
func solid(t TileType) bool {
	return t == TileWall || t == TileOutOfBounds
}

// tileIn reads a level-relative cell, treating cells outside the level as
// walls so nothing ever leaks into a neighbouring level.
func tileIn(g *TileGrid, level Rect, cell Point) TileType {
	abs := Point{X: level.X + cell.X, Y: level.Y + cell.Y}
	if !level.Contains(abs) {
		return TileOutOfBounds
	}
	return g.TileAt(abs)
}

// Evaluate decides what a move from cell (level-relative) in dir does. A
// push vacates the target tile immediately; the crate is written to its new
// resting cell by the caller when the move animation completes.
func Evaluate(g *TileGrid, level Rect, cell Point, dir Direction) Decision {
	if !dir.Valid() {
		return MoveBlocked
	}

	step := dir.Delta().Scale(LogicalTile)
	target := cell.Add(step)
	beyond := target.Add(step)

	t := tileIn(g, level, target)
	if solid(t) {
		return MoveBlocked
	}

	if t == TileCrate {
		b := tileIn(g, level, beyond)
		if solid(b) || b == TileCrate {
			return MoveBlocked
		}
		g.ResetLogicalTile(Point{X: level.X + target.X, Y: level.Y + target.Y})
		return MovePush
	}

	return MoveFree
}

// CrateRestingCell returns the level-relative cell where a crate pushed from
// cell in dir comes to rest, given cell is the player's location before the
// move.
func CrateRestingCell(cell Point, dir Direction) Point {
	return cell.Add(dir.Delta().Scale(2 * LogicalTile))
}
