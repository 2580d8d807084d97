// Package engine provides the core puzzle logic for SokoBlit.
//
// A world is a single grid of tile codes holding 22 levels, each a 40x30
// cell region. Every logical tile covers a 2x2 block of cells. The engine
// implements:
//   - TileGrid: the live layout plus the read-only authored layout
//   - Player: one agent per level with a 24 tick move animation
//   - Evaluate: wall, crate and push rules for a single move
//   - ModeMachine: the zoom transition between play and the level overview
//   - Neighbor: the authored adjacency between levels
//   - MapTransform, LevelRect and Alpha: render maths for any frontend
//
// Core Types:
//
// GameEngine implements Engine. A tick is one call to Update with an Input;
// View returns a copy of everything a renderer needs afterwards.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	authored, err := engine.LoadWorld(config, "configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, authored)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report := gameEngine.Update(engine.Input{Direction: engine.DirRight})
//	view := gameEngine.View()
//
// Game Rules:
//
// The player walks one logical tile per move and pushes crates ahead of it.
// A crate only moves into open floor or a target; walls and other crates
// stop it. A session opens zoomed out over all levels: arrow keys pick a
// level, and the toggle zooms in to play it or back out to choose another.
package engine
