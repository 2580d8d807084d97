package engine

// TileType is a tile code in the world grid. Each logical tile spans four
// physical cells carrying base, base+1, base+16 and base+17.
type TileType uint8

const (
	TileBlank      TileType = 0
	TileWall       TileType = 2
	TileCrate      TileType = 4
	TileEmpty      TileType = 34
	TileCrateHome  TileType = 36
	TilePlayerHome TileType = 76

	// TileOutOfBounds is returned for reads outside the grid, or from an
	// uninitialised grid. The movement rules treat it like a wall.
	TileOutOfBounds TileType = 255
)

const (
	// Default world size in cells.
	MapWidth  = 256
	MapHeight = 256

	// Size of a single level region in cells.
	LevelWidth  = 40
	LevelHeight = 30

	// LogicalTile is the number of cells per logical tile edge.
	LogicalTile = 2

	// CellPixels is the size of one physical cell on screen.
	CellPixels = 8

	// MoveSteps is the steps countdown of a freshly accepted move.
	MoveSteps = 16

	// AnimationDelay is the number of skipped Update calls between two
	// step decrements (steps advance on every third call).
	AnimationDelay = 2

	// ProgressMax is the fully-zoomed-out transition progress.
	ProgressMax = 100

	// Screen size used for world coordinates (one level per screen).
	ScreenWidth  = 320
	ScreenHeight = 240

	DefaultStartLevel = 8
	DefaultTickRateHz = 100
)

// Direction is a movement or navigation intent.
type Direction uint8

const (
	DirNone Direction = iota
	DirDown
	DirLeft
	DirUp
	DirRight
)

var directionNames = map[Direction]string{
	DirNone:  "none",
	DirDown:  "down",
	DirLeft:  "left",
	DirUp:    "up",
	DirRight: "right",
}

// String returns the lower-case name used on the wire.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether d is one of the four movement directions.
func (d Direction) Valid() bool {
	return d >= DirDown && d <= DirRight
}

// ParseDirection maps "up", "down", "left", "right" (and "" / "none") to a
// Direction. Unknown names return false.
func ParseDirection(name string) (Direction, bool) {
	for d, n := range directionNames {
		if n == name {
			return d, true
		}
	}
	if name == "" {
		return DirNone, true
	}
	return DirNone, false
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, ok := ParseDirection(string(text))
	if !ok {
		return ErrInvalidDirection
	}
	*d = parsed
	return nil
}

// Point is a cell (or pixel) coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p*n.
func (p Point) Scale(n int) Point {
	return Point{X: p.X * n, Y: p.Y * n}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Input is the already-debounced intent for a single tick.
type Input struct {
	Direction Direction `json:"direction"`
	Toggle    bool      `json:"toggle,omitempty"`
}

// Empty reports whether the input carries no intent at all.
func (in Input) Empty() bool {
	return in.Direction == DirNone && !in.Toggle
}

// GameConfig describes a world: where the authored layout comes from and a
// few operational parameters.
type GameConfig struct {
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	MapFile     string              `json:"map_file,omitempty" yaml:"map_file,omitempty"`
	MapWidth    int                 `json:"map_width,omitempty" yaml:"map_width,omitempty"`
	MapHeight   int                 `json:"map_height,omitempty" yaml:"map_height,omitempty"`
	StartLevel  int                 `json:"start_level,omitempty" yaml:"start_level,omitempty"`
	TickRateHz  int                 `json:"tick_rate_hz,omitempty" yaml:"tick_rate_hz,omitempty"`
	Levels      map[string][]string `json:"levels,omitempty" yaml:"levels,omitempty"`
}

// Event types reported by Update.
const (
	EventModeChanged   = "mode_changed"
	EventLevelSelected = "level_selected"
	EventMoveStarted   = "move_started"
	EventBump          = "bump"
	EventPushStarted   = "push_started"
	EventCrateParked   = "crate_parked"
	EventMoveFinished  = "move_finished"
)

// Event is something observable that happened during a tick.
type Event struct {
	Type      string    `json:"type"`
	Tick      uint64    `json:"tick"`
	Level     LevelID   `json:"level"`
	Direction Direction `json:"direction,omitempty"`
	Position  *Point    `json:"position,omitempty"`
	Mode      *Mode     `json:"mode,omitempty"`
}

// TickReport summarises one Update call.
type TickReport struct {
	Tick   uint64  `json:"tick"`
	Events []Event `json:"events,omitempty"`
}

// PlayerView is the render-facing snapshot of a PlayerAgent.
type PlayerView struct {
	Location    Point     `json:"location"`
	Facing      Direction `json:"facing"`
	Steps       int       `json:"steps"`
	Blocked     bool      `json:"blocked"`
	Pushing     bool      `json:"pushing"`
	PixelOffset Point     `json:"pixel_offset"`
	CrateOffset *Point    `json:"crate_offset,omitempty"`
	Frame       int       `json:"frame"`
}

// View is everything a renderer needs for one frame. It is a copy; mutating
// it does not affect the engine.
type View struct {
	Tick      uint64      `json:"tick"`
	Level     LevelID     `json:"level"`
	Origin    Point       `json:"origin"`
	Mode      Mode        `json:"mode"`
	Progress  int         `json:"progress"`
	Zoom      int         `json:"zoom"`
	Alpha     uint8       `json:"alpha"`
	Tiles     [][]int     `json:"tiles"`
	Player    *PlayerView `json:"player,omitempty"`
	Highlight Rect        `json:"highlight"`
	Transform Affine      `json:"transform"`
}
