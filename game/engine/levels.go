package engine

import (
	"fmt"
	"strconv"
)

// LevelID identifies one authored level, 1 through LevelCount.
type LevelID int

// LevelCount is the number of authored levels.
const LevelCount = 22

// Valid reports whether id names an authored level.
func (id LevelID) Valid() bool {
	return id >= 1 && id <= LevelCount
}

func (id LevelID) String() string {
	return strconv.Itoa(int(id))
}

// ParseLevelID parses a decimal level id and checks it against the table.
func ParseLevelID(s string) (LevelID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	id := LevelID(n)
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLevel, n)
	}
	return id, nil
}

// neighbours is indexed by level id and holds left, right, up, down. Zero
// means there is no level on that side.
var neighbours = [LevelCount + 1][4]LevelID{
	1:  {0, 2, 0, 6},
	2:  {1, 3, 0, 7},
	3:  {2, 4, 0, 8},
	4:  {3, 5, 0, 9},
	5:  {4, 0, 0, 10},
	6:  {0, 7, 1, 11},
	7:  {6, 8, 2, 0},
	8:  {7, 9, 3, 0},
	9:  {8, 10, 4, 0},
	10: {9, 0, 5, 12},
	11: {0, 12, 6, 13},
	12: {11, 0, 10, 17},
	13: {0, 14, 11, 18},
	14: {13, 15, 0, 19},
	15: {14, 16, 0, 20},
	16: {15, 17, 0, 21},
	17: {16, 0, 12, 22},
	18: {0, 19, 13, 0},
	19: {18, 20, 14, 0},
	20: {19, 21, 15, 0},
	21: {20, 22, 16, 0},
	22: {21, 0, 17, 0},
}

// Neighbor returns the level reached by navigating from id in dir. Unknown
// ids, invalid directions and missing neighbours report false.
func Neighbor(id LevelID, dir Direction) (LevelID, bool) {
	if !id.Valid() {
		return 0, false
	}

	var next LevelID
	switch dir {
	case DirLeft:
		next = neighbours[id][0]
	case DirRight:
		next = neighbours[id][1]
	case DirUp:
		next = neighbours[id][2]
	case DirDown:
		next = neighbours[id][3]
	default:
		return 0, false
	}
	return next, next != 0
}

// Origin returns the top-left cell of a level's region in the world grid.
// Levels 11 and 12 sit alone on their row, at the far left and right.
func Origin(id LevelID) (Point, bool) {
	switch {
	case id >= 1 && id <= 5:
		return Point{X: LevelWidth * int(id-1), Y: 0}, true
	case id >= 6 && id <= 10:
		return Point{X: LevelWidth * int(id-6), Y: LevelHeight}, true
	case id == 11:
		return Point{X: 0, Y: 2 * LevelHeight}, true
	case id == 12:
		return Point{X: 4 * LevelWidth, Y: 2 * LevelHeight}, true
	case id >= 13 && id <= 17:
		return Point{X: LevelWidth * int(id-13), Y: 3 * LevelHeight}, true
	case id >= 18 && id <= 22:
		return Point{X: LevelWidth * int(id-18), Y: 4 * LevelHeight}, true
	}
	return Point{}, false
}

// Bounds returns the level's region in cells.
func Bounds(id LevelID) (Rect, bool) {
	o, ok := Origin(id)
	if !ok {
		return Rect{}, false
	}
	return Rect{X: o.X, Y: o.Y, W: LevelWidth, H: LevelHeight}, true
}

// Centre returns the world pixel coordinate at the middle of a level's screen.
func Centre(id LevelID) (Point, bool) {
	o, ok := Origin(id)
	if !ok {
		return Point{}, false
	}
	return Point{
		X: o.X*CellPixels + ScreenWidth/2,
		Y: o.Y*CellPixels + ScreenHeight/2,
	}, true
}

// LevelInfo describes one entry of the level table.
type LevelInfo struct {
	ID     LevelID            `json:"id"`
	Origin Point              `json:"origin"`
	Centre Point              `json:"centre"`
	Next   map[string]LevelID `json:"neighbours"`
}

// Levels returns the whole level table in id order.
func Levels() []LevelInfo {
	out := make([]LevelInfo, 0, LevelCount)
	for id := LevelID(1); id <= LevelCount; id++ {
		o, _ := Origin(id)
		c, _ := Centre(id)
		info := LevelInfo{ID: id, Origin: o, Centre: c, Next: map[string]LevelID{}}
		for _, dir := range []Direction{DirLeft, DirRight, DirUp, DirDown} {
			if n, ok := Neighbor(id, dir); ok {
				info.Next[dir.String()] = n
			}
		}
		out = append(out, info)
	}
	return out
}
