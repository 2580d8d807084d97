package engine

// TileGrid holds the authored layout of the whole world and the live copy
// that gameplay mutates. The authored buffer is never written after load.
type TileGrid struct {
	width    int
	height   int
	authored []TileType
	live     []TileType
}

// NewTileGrid copies the authored buffer into a fresh live layout. A buffer
// shorter than width*height, or a size outside ValidWorldSize, leaves the
// grid uninitialised: reads return TileOutOfBounds and writes fail, so
// dependent operations become no-ops.
func NewTileGrid(width, height int, authored []byte) *TileGrid {
	g := &TileGrid{width: width, height: height}
	if !ValidWorldSize(width, height) || len(authored) < width*height {
		return g
	}

	g.authored = make([]TileType, width*height)
	for i := range g.authored {
		g.authored[i] = TileType(authored[i])
	}
	g.live = make([]TileType, len(g.authored))
	copy(g.live, g.authored)
	return g
}

// Initialized reports whether an authored layout was loaded.
func (g *TileGrid) Initialized() bool {
	return g != nil && g.live != nil
}

// Width returns the grid width in cells.
func (g *TileGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *TileGrid) Height() int { return g.height }

func (g *TileGrid) inBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// blockInBounds checks that the 2x2 block with its top-left at p fits.
func (g *TileGrid) blockInBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= g.width-LogicalTile && p.Y <= g.height-LogicalTile
}

func (g *TileGrid) offset(p Point) int {
	return p.Y*g.width + p.X
}

// TileAt reads the live layout.
func (g *TileGrid) TileAt(p Point) TileType {
	if !g.Initialized() || !g.inBounds(p) {
		return TileOutOfBounds
	}
	return g.live[g.offset(p)]
}

// AuthoredAt reads the authored layout.
func (g *TileGrid) AuthoredAt(p Point) TileType {
	if !g.Initialized() || !g.inBounds(p) {
		return TileOutOfBounds
	}
	return g.authored[g.offset(p)]
}

// SetLogicalTile writes the four cells of the logical tile at p using the
// base, base+1, base+16, base+17 convention.
func (g *TileGrid) SetLogicalTile(p Point, base TileType) bool {
	if !g.Initialized() || !g.blockInBounds(p) {
		return false
	}

	g.live[g.offset(p)] = base
	g.live[g.offset(p.Add(Point{X: 1}))] = base + 1
	g.live[g.offset(p.Add(Point{Y: 1}))] = base + 16
	g.live[g.offset(p.Add(Point{X: 1, Y: 1}))] = base + 17
	return true
}

// ResetLogicalTile restores the authored logical tile at p. An authored
// crate comes back as plain floor so a pushed crate never leaves a copy of
// itself behind.
func (g *TileGrid) ResetLogicalTile(p Point) bool {
	if !g.Initialized() || !g.blockInBounds(p) {
		return false
	}

	if g.authored[g.offset(p)] == TileCrate {
		return g.SetLogicalTile(p, TileEmpty)
	}

	for _, d := range []Point{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}} {
		o := g.offset(p.Add(d))
		g.live[o] = g.authored[o]
	}
	return true
}

// ResetRegion restores every authored cell inside r, crates included. It is
// used to restart a level.
func (g *TileGrid) ResetRegion(r Rect) {
	if !g.Initialized() {
		return
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			p := Point{X: x, Y: y}
			if g.inBounds(p) {
				g.live[g.offset(p)] = g.authored[g.offset(p)]
			}
		}
	}
}

// Region copies the live codes inside r, row by row. Cells outside the grid
// come back as TileOutOfBounds.
func (g *TileGrid) Region(r Rect) [][]int {
	rows := make([][]int, r.H)
	for y := 0; y < r.H; y++ {
		rows[y] = make([]int, r.W)
		for x := 0; x < r.W; x++ {
			rows[y][x] = int(g.TileAt(Point{X: r.X + x, Y: r.Y + y}))
		}
	}
	return rows
}
