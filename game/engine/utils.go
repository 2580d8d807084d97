package engine

// Delta returns the unit cell vector for d; DirNone and invalid values map
// to the zero vector.
func (d Direction) Delta() Point {
	switch d {
	case DirDown:
		return Point{Y: 1}
	case DirLeft:
		return Point{X: -1}
	case DirUp:
		return Point{Y: -1}
	case DirRight:
		return Point{X: 1}
	}
	return Point{}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// CountTiles counts logical tiles with the given base code inside r.
func CountTiles(g *TileGrid, r Rect, base TileType) int {
	count := 0
	for y := r.Y; y < r.Y+r.H; y += LogicalTile {
		for x := r.X; x < r.X+r.W; x += LogicalTile {
			if g.TileAt(Point{X: x, Y: y}) == base {
				count++
			}
		}
	}
	return count
}

// FindTile returns the first logical tile with the given base code inside r,
// scanning rows top to bottom. The result is relative to r's origin.
func FindTile(g *TileGrid, r Rect, base TileType) (Point, bool) {
	for y := r.Y; y < r.Y+r.H; y += LogicalTile {
		for x := r.X; x < r.X+r.W; x += LogicalTile {
			if g.TileAt(Point{X: x, Y: y}) == base {
				return Point{X: x - r.X, Y: y - r.Y}, true
			}
		}
	}
	return Point{}, false
}
