package engine

import (
	"strings"
	"testing"
)

// newLevelGrid expands rows as level 1 of an otherwise blank world.
func newLevelGrid(t *testing.T, rows ...string) (*TileGrid, Rect) {
	t.Helper()
	data, err := BuildLayout(MapWidth, MapHeight, nil, map[LevelID][]string{1: rows})
	if err != nil {
		t.Fatalf("BuildLayout: %v", err)
	}
	bounds, _ := Bounds(1)
	return NewTileGrid(MapWidth, MapHeight, data), bounds
}

func TestEvaluate(t *testing.T) {
	edge := strings.Repeat(" ", 18) + "@$"

	tests := []struct {
		name   string
		rows   []string
		from   Point
		dir    Direction
		want   Decision
		vacate bool
	}{
		{"free floor", []string{"@ "}, Point{0, 0}, DirRight, MoveFree, false},
		{"onto target", []string{"@."}, Point{0, 0}, DirRight, MoveFree, false},
		{"wall", []string{"@#"}, Point{0, 0}, DirRight, MoveBlocked, false},
		{"push into floor", []string{"@$ "}, Point{0, 0}, DirRight, MovePush, true},
		{"push onto target", []string{"@$."}, Point{0, 0}, DirRight, MovePush, true},
		{"crate against wall", []string{"@$#"}, Point{0, 0}, DirRight, MoveBlocked, false},
		{"crate against crate", []string{"@$$ "}, Point{0, 0}, DirRight, MoveBlocked, false},
		{"push down", []string{"@", "$", " "}, Point{0, 0}, DirDown, MovePush, true},
		{"crate at level edge", []string{edge}, Point{36, 0}, DirRight, MoveBlocked, false},
		{"no direction", []string{"@ "}, Point{0, 0}, DirNone, MoveBlocked, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, bounds := newLevelGrid(t, tt.rows...)
			before := g.Region(bounds)

			got := Evaluate(g, bounds, tt.from, tt.dir)
			if got != tt.want {
				t.Fatalf("Evaluate = %v, want %v", got, tt.want)
			}

			target := tt.from.Add(tt.dir.Delta().Scale(LogicalTile))
			if tt.vacate {
				assertLogicalTile(t, g, target, TileEmpty)
				return
			}
			after := g.Region(bounds)
			for y := range before {
				for x := range before[y] {
					if before[y][x] != after[y][x] {
						t.Fatalf("grid changed at (%d,%d)", x, y)
					}
				}
			}
		})
	}
}

func TestEvaluate_StaysInsideLevel(t *testing.T) {
	// Level 2 starts right where level 1 ends; a crate there must not be
	// reachable from level 1.
	data, err := BuildLayout(MapWidth, MapHeight, nil, map[LevelID][]string{
		1: {strings.Repeat(" ", 19) + "@"},
		2: {"$ "},
	})
	if err != nil {
		t.Fatalf("BuildLayout: %v", err)
	}
	g := NewTileGrid(MapWidth, MapHeight, data)
	bounds, _ := Bounds(1)

	if got := Evaluate(g, bounds, Point{38, 0}, DirRight); got != MoveBlocked {
		t.Errorf("Evaluate across level edge = %v, want blocked", got)
	}
	if g.TileAt(Point{40, 0}) != TileCrate {
		t.Error("crate in neighbouring level was disturbed")
	}
}

func TestCrateRestingCell(t *testing.T) {
	tests := []struct {
		from Point
		dir  Direction
		want Point
	}{
		{Point{4, 4}, DirRight, Point{8, 4}},
		{Point{4, 4}, DirLeft, Point{0, 4}},
		{Point{4, 4}, DirUp, Point{4, 0}},
		{Point{4, 4}, DirDown, Point{4, 8}},
	}
	for _, tt := range tests {
		if got := CrateRestingCell(tt.from, tt.dir); got != tt.want {
			t.Errorf("CrateRestingCell(%v, %v) = %v, want %v", tt.from, tt.dir, got, tt.want)
		}
	}
}

func TestDecision_String(t *testing.T) {
	if MovePush.String() != "push" || MoveBlocked.String() != "blocked" || MoveFree.String() != "free" {
		t.Error("unexpected decision names")
	}
}
