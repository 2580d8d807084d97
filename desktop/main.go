package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/wricardo/sokoblit/game/config"
	"github.com/wricardo/sokoblit/game/engine"
)

const (
	windowScale = 3
	spriteSize  = engine.LogicalTile * engine.CellPixels
)

var tileColors = map[engine.TileType]color.RGBA{
	engine.TileBlank:       {20, 20, 30, 255},
	engine.TileWall:        {100, 50, 0, 255},
	engine.TileCrate:       {255, 165, 0, 255},
	engine.TileEmpty:       {128, 128, 128, 255},
	engine.TileCrateHome:   {0, 200, 0, 255},
	engine.TilePlayerHome:  {110, 110, 140, 255},
	engine.TileOutOfBounds: {0, 0, 0, 255},
}

var (
	playerColor    = color.RGBA{0, 100, 200, 255}
	highlightColor = color.RGBA{255, 255, 0, 255}
)

// Game runs one engine in-process and draws it every frame. One ebiten
// update is one engine tick.
type Game struct {
	engine *engine.GameEngine
	width  int
	height int

	world    *ebiten.Image
	painted  []int
	player   *ebiten.Image
	crate    *ebiten.Image
	lastView *engine.View
}

// NewGame builds the engine for a config and allocates the world image.
func NewGame(cfg *engine.GameConfig, world []byte) (*Game, error) {
	eng, err := engine.NewEngine(cfg, world)
	if err != nil {
		return nil, err
	}

	width, height := cfg.WorldSize()
	g := &Game{
		engine:  eng,
		width:   width,
		height:  height,
		world:   ebiten.NewImage(width*engine.CellPixels, height*engine.CellPixels),
		painted: make([]int, width*height),
		player:  ebiten.NewImage(spriteSize, spriteSize),
		crate:   ebiten.NewImage(spriteSize, spriteSize),
	}
	for i := range g.painted {
		g.painted[i] = -1
	}
	g.player.Fill(playerColor)
	g.crate.Fill(tileColors[engine.TileCrate])
	return g, nil
}

// Update polls the keyboard and advances the engine by one tick
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) && g.engine.Mode() == engine.ModePlay {
		if err := g.engine.ResetLevel(g.engine.ActiveLevel()); err != nil {
			log.Printf("Failed to reset level: %v", err)
		}
	}

	report := g.engine.Update(g.input())
	for _, e := range report.Events {
		if e.Type == engine.EventCrateParked || e.Type == engine.EventLevelSelected {
			log.Printf("[%s] tick=%d level=%d", e.Type, e.Tick, e.Level)
		}
	}
	g.lastView = g.engine.View()
	return nil
}

// input turns key state into one tick of intent. Movement repeats while a
// key is held; overview navigation and the zoom toggle fire once per press.
func (g *Game) input() engine.Input {
	in := engine.Input{
		Toggle: inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter),
	}

	pressed := ebiten.IsKeyPressed
	if g.engine.Mode() != engine.ModePlay {
		pressed = inpututil.IsKeyJustPressed
	}

	switch {
	case pressed(ebiten.KeyArrowUp) || pressed(ebiten.KeyW):
		in.Direction = engine.DirUp
	case pressed(ebiten.KeyArrowDown) || pressed(ebiten.KeyS):
		in.Direction = engine.DirDown
	case pressed(ebiten.KeyArrowLeft) || pressed(ebiten.KeyA):
		in.Direction = engine.DirLeft
	case pressed(ebiten.KeyArrowRight) || pressed(ebiten.KeyD):
		in.Direction = engine.DirRight
	}
	return in
}

// Draw renders the world through the view transform, then the players and
// the level highlight
func (g *Game) Draw(screen *ebiten.Image) {
	view := g.lastView
	if view == nil {
		view = g.engine.View()
	}

	screen.Fill(tileColors[engine.TileBlank])
	g.paintWorld()

	toScreen := screenGeoM(view.Transform)

	op := &ebiten.DrawImageOptions{}
	op.GeoM = toScreen
	screen.DrawImage(g.world, op)

	for id := engine.LevelID(1); id <= engine.LevelCount; id++ {
		p := g.engine.Player(id)
		if p == nil {
			continue
		}
		origin, _ := engine.Origin(id)
		g.drawPlayer(screen, toScreen, origin, p.View())
	}

	if view.Mode != engine.ModePlay {
		h := view.Highlight
		c := highlightColor
		c.A = view.Alpha
		vector.StrokeRect(screen, float32(h.X), float32(h.Y), float32(h.W), float32(h.H), 1, c, false)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("L%d %s", view.Level, view.Mode), 4, 4)
}

// paintWorld repaints the cells whose live tile changed since the last frame
func (g *Game) paintWorld() {
	grid := g.engine.Grid()
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			code := int(grid.TileAt(engine.Point{X: x, Y: y}))
			i := y*g.width + x
			if g.painted[i] == code {
				continue
			}
			g.painted[i] = code

			px, py := x*engine.CellPixels, y*engine.CellPixels
			cell := g.world.SubImage(image.Rect(px, py, px+engine.CellPixels, py+engine.CellPixels)).(*ebiten.Image)
			cell.Fill(cellColor(code))
		}
	}
}

func (g *Game) drawPlayer(screen *ebiten.Image, toScreen ebiten.GeoM, origin engine.Point, p *engine.PlayerView) {
	x, y := spritePosition(origin, p.Location, p.PixelOffset)

	if p.CrateOffset != nil {
		cx, cy := spritePosition(origin, p.Location, *p.CrateOffset)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(cx, cy)
		op.GeoM.Concat(toScreen)
		screen.DrawImage(g.crate, op)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(toScreen)
	screen.DrawImage(g.player, op)
}

// Layout returns the engine's fixed screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return engine.ScreenWidth, engine.ScreenHeight
}

// screenGeoM inverts the view transform (screen to world) into the world to
// screen GeoM ebiten draws with.
func screenGeoM(m engine.Affine) ebiten.GeoM {
	inv, ok := m.Invert()
	if !ok {
		inv = engine.Identity()
	}

	var g ebiten.GeoM
	g.SetElement(0, 0, inv.A)
	g.SetElement(0, 1, inv.C)
	g.SetElement(0, 2, inv.TX)
	g.SetElement(1, 0, inv.B)
	g.SetElement(1, 1, inv.D)
	g.SetElement(1, 2, inv.TY)
	return g
}

// spritePosition is the world pixel of a sprite at a level-relative cell
// plus a pixel offset.
func spritePosition(origin, cell, offset engine.Point) (float64, float64) {
	p := origin.Add(cell).Scale(engine.CellPixels).Add(offset)
	return float64(p.X), float64(p.Y)
}

// tileKind maps a physical cell code back to the logical tile it belongs to.
func tileKind(code int) engine.TileType {
	for _, delta := range []int{0, 1, 16, 17} {
		t := engine.TileType(code - delta)
		if _, ok := tileColors[t]; ok && code-delta >= 0 {
			return t
		}
	}
	return engine.TileOutOfBounds
}

// cellColor shades the top-left cell of each logical tile a little lighter.
func cellColor(code int) color.RGBA {
	kind := tileKind(code)
	c := tileColors[kind]
	if code == int(kind) && kind != engine.TileBlank {
		c.R = lighten(c.R)
		c.G = lighten(c.G)
		c.B = lighten(c.B)
	}
	return c
}

func lighten(v uint8) uint8 {
	if v > 235 {
		return 255
	}
	return v + 20
}

// loadConfig resolves a config and its world. A world that fails to load is
// logged and left nil, so the game starts with an uninitialised grid.
func loadConfig(manager *config.Manager, id string) (*engine.GameConfig, []byte, error) {
	cfg, err := manager.LoadConfig(id)
	if err != nil {
		return nil, nil, err
	}
	world, err := manager.LoadWorld(cfg)
	if err != nil {
		log.Printf("Warning: world for config %s unavailable, running degraded: %v", id, err)
		return cfg, nil, nil
	}
	return cfg, world, nil
}

func main() {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "configs"
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		log.Fatalf("Failed to create config manager: %v", err)
	}

	configID := manager.DefaultID()
	if len(os.Args) > 1 {
		configID = os.Args[1]
	}

	cfg, world, err := loadConfig(manager, configID)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configID, err)
	}

	game, err := NewGame(cfg, world)
	if err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}

	ebiten.SetTPS(cfg.TickRate())
	ebiten.SetWindowSize(engine.ScreenWidth*windowScale, engine.ScreenHeight*windowScale)
	ebiten.SetWindowTitle(fmt.Sprintf("SokoBlit - %s", cfg.Name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
