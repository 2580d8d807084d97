package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// MaxLayoutRows and MaxLayoutCols bound a text layout in logical tiles.
const (
	MaxLayoutRows = LevelHeight / LogicalTile
	MaxLayoutCols = LevelWidth / LogicalTile
)

// layoutTiles maps text layout characters to logical tile base codes.
var layoutTiles = map[rune]TileType{
	'#': TileWall,
	'$': TileCrate,
	'.': TileCrateHome,
	'@': TilePlayerHome,
	' ': TileEmpty,
	'-': TileBlank,
}

// DecodeMap reads a raw world map, zstd-compressed when compressed is set.
func DecodeMap(r io.Reader, compressed bool) ([]byte, error) {
	if !compressed {
		return io.ReadAll(r)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return data, nil
}

// LoadMapFile reads a map file. Files ending in .zst are decompressed.
func LoadMapFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeMap(bufio.NewReader(f), strings.HasSuffix(path, ".zst"))
}

// WriteMapFile stores a map, zstd-compressed when path ends in .zst.
func WriteMapFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		_, err = f.Write(data)
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ValidateLayout checks a text layout without expanding it.
func ValidateLayout(rows []string) error {
	if len(rows) > MaxLayoutRows {
		return fmt.Errorf("%w: %d rows, max %d", ErrInvalidLayout, len(rows), MaxLayoutRows)
	}
	for i, row := range rows {
		if n := len([]rune(row)); n > MaxLayoutCols {
			return fmt.Errorf("%w: row %d has %d tiles, max %d", ErrInvalidLayout, i+1, n, MaxLayoutCols)
		}
		for j, ch := range []rune(row) {
			if _, ok := layoutTiles[ch]; !ok {
				return fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidLayout, ch, i+1, j+1)
			}
		}
	}
	return nil
}

// BuildLayout expands text layouts into a world map. Each character becomes
// a 2x2 logical tile at the level's origin; base, when non-nil, is copied
// first so layouts can overlay a map file.
func BuildLayout(width, height int, base []byte, levels map[LevelID][]string) ([]byte, error) {
	if !ValidWorldSize(width, height) {
		return nil, fmt.Errorf("%w: world size %dx%d", ErrInvalidLayout, width, height)
	}

	data := make([]byte, width*height)
	copy(data, base)
	grid := NewTileGrid(width, height, data)

	ids := make([]LevelID, 0, len(levels))
	for id := range levels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		rows := levels[id]
		origin, ok := Origin(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, id)
		}
		if err := ValidateLayout(rows); err != nil {
			return nil, fmt.Errorf("level %d: %w", id, err)
		}

		for y, row := range rows {
			for x, ch := range []rune(row) {
				cell := origin.Add(Point{X: x, Y: y}.Scale(LogicalTile))
				if !grid.SetLogicalTile(cell, layoutTiles[ch]) {
					return nil, fmt.Errorf("%w: level %d does not fit a %dx%d world", ErrInvalidLayout, id, width, height)
				}
			}
		}
	}

	out := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y*width+x] = byte(grid.TileAt(Point{X: x, Y: y}))
		}
	}
	return out, nil
}

// LoadWorld produces the authored map for a config. The map file must be a
// local path and is resolved against baseDir. Text layouts are drawn over
// the map file when both exist.
func LoadWorld(config *GameConfig, baseDir string) ([]byte, error) {
	width, height := config.WorldSize()
	if !ValidWorldSize(width, height) {
		return nil, fmt.Errorf("%w: world size %dx%d", ErrInvalidConfig, width, height)
	}

	var base []byte
	if config.MapFile != "" {
		if !filepath.IsLocal(config.MapFile) {
			return nil, fmt.Errorf("%w: map_file %q is outside the config directory", ErrInvalidConfig, config.MapFile)
		}
		path := filepath.Join(baseDir, config.MapFile)
		data, err := LoadMapFile(path)
		if err != nil {
			return nil, fmt.Errorf("load map %s: %w", config.MapFile, err)
		}
		if len(data) < width*height {
			return nil, fmt.Errorf("map %s: %d bytes, want %d", config.MapFile, len(data), width*height)
		}
		base = data
	}

	layouts, err := config.LevelLayouts()
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return base, nil
	}
	return BuildLayout(width, height, base, layouts)
}
