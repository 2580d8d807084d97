// Command analyze prints quick, human-readable heuristics about the world
// configs in a config directory. For every level that has content it counts
// crates, crate homes and player homes, and flags crates pushed into a
// corner they can never leave.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/sokoblit/game/config"
	"github.com/wricardo/sokoblit/game/engine"
)

// LevelSummary is what analyze reports for one level.
type LevelSummary struct {
	Level      engine.LevelID
	Walls      int
	Crates     int
	Homes      int
	PlayerHome *engine.Point
	Cornered   []engine.Point
}

// Empty reports whether the level region holds nothing but blank tiles.
func (s LevelSummary) Empty() bool {
	return s.Walls == 0 && s.Crates == 0 && s.Homes == 0 && s.PlayerHome == nil
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing configs: %v\n", err)
		os.Exit(1)
	}

	for _, info := range configs {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)
		if err := analyzeConfig(os.Stdout, manager, info.ConfigID); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func analyzeConfig(w io.Writer, manager *config.Manager, id string) error {
	cfg, err := manager.LoadConfig(id)
	if err != nil {
		return err
	}
	world, err := manager.LoadWorld(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	width, height := cfg.WorldSize()
	fmt.Fprintf(w, "World Size: %d x %d\n", width, height)
	fmt.Fprintf(w, "Start Level: %d\n", cfg.Start())
	fmt.Fprintf(w, "Tick Rate: %d Hz\n", cfg.TickRate())

	summaries := summarizeWorld(cfg, world)
	fmt.Fprintf(w, "Levels With Content: %d\n", len(summaries))

	startFound := false
	for _, s := range summaries {
		if s.Level == cfg.Start() {
			startFound = true
		}
		writeSummary(w, s)
	}

	if !startFound {
		fmt.Fprintf(w, "⚠️  WARNING: start level %d is empty\n", cfg.Start())
	}
	return nil
}

func writeSummary(w io.Writer, s LevelSummary) {
	fmt.Fprintf(w, "\nLevel %d: %d crates, %d crate homes\n", s.Level, s.Crates, s.Homes)

	if s.PlayerHome != nil {
		fmt.Fprintf(w, "   Player Home: (%d, %d)\n", s.PlayerHome.X, s.PlayerHome.Y)
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: no player home, the level cannot be played\n")
	}

	if s.Crates > s.Homes {
		fmt.Fprintf(w, "⚠️  WARNING: %d more crates than crate homes\n", s.Crates-s.Homes)
	}

	if len(s.Cornered) > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d crates are stuck in a corner\n", len(s.Cornered))
		for i, p := range s.Cornered {
			if i < 5 {
				fmt.Fprintf(w, "   Stuck Crate: (%d, %d)\n", p.X, p.Y)
			}
		}
		if len(s.Cornered) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(s.Cornered)-5)
		}
	} else if s.Crates > 0 {
		fmt.Fprintf(w, "✅ Every crate can still be pushed\n")
	}
}

// summarizeWorld returns one summary per level that has content, in id order.
func summarizeWorld(cfg *engine.GameConfig, world []byte) []LevelSummary {
	width, height := cfg.WorldSize()
	grid := engine.NewTileGrid(width, height, world)

	var out []LevelSummary
	for id := engine.LevelID(1); id <= engine.LevelCount; id++ {
		s := summarizeLevel(grid, id)
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

func summarizeLevel(grid *engine.TileGrid, id engine.LevelID) LevelSummary {
	s := LevelSummary{Level: id}
	bounds, ok := engine.Bounds(id)
	if !ok {
		return s
	}

	s.Walls = engine.CountTiles(grid, bounds, engine.TileWall)
	s.Crates = engine.CountTiles(grid, bounds, engine.TileCrate)
	s.Homes = engine.CountTiles(grid, bounds, engine.TileCrateHome)
	if home, ok := engine.FindTile(grid, bounds, engine.TilePlayerHome); ok {
		s.PlayerHome = &home
	}

	for y := 0; y < bounds.H; y += engine.LogicalTile {
		for x := 0; x < bounds.W; x += engine.LogicalTile {
			cell := engine.Point{X: x, Y: y}
			if grid.TileAt(engine.Point{X: bounds.X + x, Y: bounds.Y + y}) != engine.TileCrate {
				continue
			}
			if cornered(grid, bounds, cell) {
				s.Cornered = append(s.Cornered, cell)
			}
		}
	}
	return s
}

// wall reads a level-relative cell; anything outside the level is a wall.
func wall(grid *engine.TileGrid, bounds engine.Rect, cell engine.Point) bool {
	abs := cell.Add(engine.Point{X: bounds.X, Y: bounds.Y})
	if !bounds.Contains(abs) {
		return true
	}
	t := grid.TileAt(abs)
	return t == engine.TileWall || t == engine.TileOutOfBounds
}

// cornered reports whether a crate has walls on two adjacent sides.
func cornered(grid *engine.TileGrid, bounds engine.Rect, cell engine.Point) bool {
	side := func(d engine.Direction) bool {
		return wall(grid, bounds, cell.Add(d.Delta().Scale(engine.LogicalTile)))
	}
	vertical := side(engine.DirUp) || side(engine.DirDown)
	horizontal := side(engine.DirLeft) || side(engine.DirRight)
	return vertical && horizontal
}
