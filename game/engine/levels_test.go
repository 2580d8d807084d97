package engine

import (
	"errors"
	"testing"
)

func TestNeighbor_Table(t *testing.T) {
	// left, right, up, down
	want := map[LevelID][4]LevelID{
		1: {0, 2, 0, 6}, 2: {1, 3, 0, 7}, 3: {2, 4, 0, 8}, 4: {3, 5, 0, 9}, 5: {4, 0, 0, 10},
		6: {0, 7, 1, 11}, 7: {6, 8, 2, 0}, 8: {7, 9, 3, 0}, 9: {8, 10, 4, 0}, 10: {9, 0, 5, 12},
		11: {0, 12, 6, 13}, 12: {11, 0, 10, 17},
		13: {0, 14, 11, 18}, 14: {13, 15, 0, 19}, 15: {14, 16, 0, 20}, 16: {15, 17, 0, 21}, 17: {16, 0, 12, 22},
		18: {0, 19, 13, 0}, 19: {18, 20, 14, 0}, 20: {19, 21, 15, 0}, 21: {20, 22, 16, 0}, 22: {21, 0, 17, 0},
	}
	dirs := [4]Direction{DirLeft, DirRight, DirUp, DirDown}

	for id, row := range want {
		for i, dir := range dirs {
			got, ok := Neighbor(id, dir)
			if ok != (row[i] != 0) || got != row[i] {
				t.Errorf("Neighbor(%d, %v) = %d, %v; want %d", id, dir, got, ok, row[i])
			}
		}
	}
}

func TestNeighbor_SideLevels(t *testing.T) {
	tests := []struct {
		from LevelID
		dir  Direction
		want LevelID
	}{
		{11, DirUp, 6},
		{11, DirDown, 13},
		{11, DirRight, 12},
		{12, DirUp, 10},
		{12, DirDown, 17},
		{10, DirDown, 12},
		{6, DirDown, 11},
	}
	for _, tt := range tests {
		got, ok := Neighbor(tt.from, tt.dir)
		if !ok || got != tt.want {
			t.Errorf("Neighbor(%d, %v) = %d, %v; want %d", tt.from, tt.dir, got, ok, tt.want)
		}
	}
}

func TestNeighbor_Invalid(t *testing.T) {
	for _, id := range []LevelID{0, -1, 23, 255} {
		if _, ok := Neighbor(id, DirRight); ok {
			t.Errorf("Neighbor(%d) reported a level", id)
		}
	}
	if _, ok := Neighbor(8, DirNone); ok {
		t.Error("Neighbor with no direction reported a level")
	}
	if _, ok := Neighbor(8, Direction(9)); ok {
		t.Error("Neighbor with invalid direction reported a level")
	}
}

func TestOrigin(t *testing.T) {
	tests := []struct {
		id   LevelID
		want Point
	}{
		{1, Point{0, 0}},
		{5, Point{160, 0}},
		{6, Point{0, 30}},
		{10, Point{160, 30}},
		{11, Point{0, 60}},
		{12, Point{160, 60}},
		{13, Point{0, 90}},
		{17, Point{160, 90}},
		{18, Point{0, 120}},
		{22, Point{160, 120}},
	}
	for _, tt := range tests {
		got, ok := Origin(tt.id)
		if !ok || got != tt.want {
			t.Errorf("Origin(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if _, ok := Origin(0); ok {
		t.Error("Origin(0) should fail")
	}
}

func TestCentre(t *testing.T) {
	w, h := ScreenWidth, ScreenHeight
	tests := []struct {
		id   LevelID
		want Point
	}{
		{1, Point{w / 2, h / 2}},
		{3, Point{3*w - w/2, h / 2}},
		{8, Point{3*w - w/2, h + h/2}},
		{11, Point{w / 2, 2*h + h/2}},
		{12, Point{4*w + w/2, 2*h + h/2}},
		{15, Point{3*w - w/2, 3*h + h/2}},
		{22, Point{5*w - w/2, 4*h + h/2}},
	}
	for _, tt := range tests {
		got, ok := Centre(tt.id)
		if !ok || got != tt.want {
			t.Errorf("Centre(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestParseLevelID(t *testing.T) {
	if id, err := ParseLevelID("11"); err != nil || id != 11 {
		t.Errorf("ParseLevelID(11) = %d, %v", id, err)
	}
	for _, s := range []string{"0", "23", "x", ""} {
		if _, err := ParseLevelID(s); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("ParseLevelID(%q) error = %v, want ErrInvalidLevel", s, err)
		}
	}
}

func TestLevels(t *testing.T) {
	levels := Levels()
	if len(levels) != LevelCount {
		t.Fatalf("got %d levels, want %d", len(levels), LevelCount)
	}
	eleven := levels[10]
	if eleven.ID != 11 || eleven.Next["up"] != 6 || eleven.Next["right"] != 12 {
		t.Errorf("level 11 entry = %+v", eleven)
	}
	if _, ok := eleven.Next["left"]; ok {
		t.Error("level 11 should have no left neighbour")
	}
}
