package mapgen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/lawnchairsociety/levelgen/internal/bsp"
	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

func solidTile(index int, c color.NRGBA) *wfc.Tile {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return wfc.NewTile(index, 1, img)
}

// groupCatalog has two groups of two tiles. Tiles only touch their own group,
// so each solved region is all red/green or all blue/black.
func groupCatalog() *wfc.Catalog {
	colors := []color.NRGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{0, 0, 0, 255},
	}
	c := &wfc.Catalog{TileSize: 1, Tolerance: wfc.DefaultTolerance, Source: "groups"}
	for i, col := range colors {
		tile := solidTile(i, col)
		group := []int{i / 2 * 2, i/2*2 + 1}
		for _, d := range wfc.AllDirections() {
			tile.Neighbors[d] = append([]int(nil), group...)
		}
		c.Tiles = append(c.Tiles, tile)
	}
	return c
}

// deadCatalog has one tile that allows no neighbors, so any region wider
// than one cell contradicts
func deadCatalog() *wfc.Catalog {
	return &wfc.Catalog{
		Tiles:     []*wfc.Tile{solidTile(0, color.NRGBA{255, 0, 0, 255})},
		TileSize:  1,
		Tolerance: wfc.DefaultTolerance,
	}
}

func smallConfig(seed int64) *Config {
	cfg := DefaultConfig(seed)
	cfg.Width, cfg.Height = 40, 40
	cfg.MinRoomSize, cfg.MaxRoomSize = 8, 12
	cfg.MaxRetries = 3
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(42)

	if cfg.Width != 100 || cfg.Height != 100 {
		t.Errorf("size = %dx%d, want 100x100", cfg.Width, cfg.Height)
	}
	if cfg.MinRoomSize != 20 || cfg.MaxRoomSize != 30 {
		t.Errorf("room size = %d..%d, want 20..30", cfg.MinRoomSize, cfg.MaxRoomSize)
	}
	if cfg.Layout != LayoutBSP {
		t.Errorf("Layout = %q, want %q", cfg.Layout, LayoutBSP)
	}
	if cfg.MaxRetries != 50 {
		t.Errorf("MaxRetries = %d, want 50", cfg.MaxRetries)
	}
	if err := cfg.Validate(groupCatalog()); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		catalog *wfc.Catalog
		field   string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, groupCatalog(), "dimensions"},
		{"negative height", func(c *Config) { c.Height = -1 }, groupCatalog(), "dimensions"},
		{"min above max", func(c *Config) { c.MinRoomSize = 13 }, groupCatalog(), "room size"},
		{"min within inset", func(c *Config) { c.MinRoomSize = bsp.RoomInset }, groupCatalog(), "min_room_size"},
		{"map smaller than room", func(c *Config) { c.Width = 7 }, groupCatalog(), "dimensions"},
		{"no retries", func(c *Config) { c.MaxRetries = 0 }, groupCatalog(), "max_retries"},
		{"unknown layout", func(c *Config) { c.Layout = "maze" }, groupCatalog(), "layout"},
		{"bad walk", func(c *Config) { c.Layout = LayoutWalk; c.Walk.Iterations = 0 }, groupCatalog(), "walk"},
		{"empty catalog", func(c *Config) {}, &wfc.Catalog{TileSize: 1, Tolerance: 0.05}, "catalog"},
		{"nil catalog", func(c *Config) {}, nil, "catalog"},
		{"bad tile size", func(c *Config) {}, &wfc.Catalog{Tiles: groupCatalog().Tiles, Tolerance: 0.05}, "tile_size"},
		{"bad tolerance", func(c *Config) {}, &wfc.Catalog{Tiles: groupCatalog().Tiles, TileSize: 1, Tolerance: 2}, "tolerance"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := smallConfig(1)
			tc.mutate(cfg)

			err := cfg.Validate(tc.catalog)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() error %v is not a *ConfigError", err)
			}
			if ce.Field != tc.field {
				t.Errorf("ConfigError.Field = %q, want %q", ce.Field, tc.field)
			}
		})
	}
}

func TestMinRoomSizeInsetBoundary(t *testing.T) {
	cfg := smallConfig(1)
	cfg.MinRoomSize = bsp.RoomInset

	err := cfg.Validate(groupCatalog())
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Validate() = %v, want *ConfigError", err)
	}
	wantMin := fmt.Sprintf("at least %d", bsp.RoomInset+1)
	if !strings.Contains(ce.Reason, wantMin) || !strings.Contains(ce.Reason, "fixed margin") {
		t.Errorf("Reason = %q, want the smallest allowed size and the carving margin", ce.Reason)
	}

	cfg.MinRoomSize = bsp.RoomInset + 1
	if err := cfg.Validate(groupCatalog()); err != nil {
		t.Errorf("Validate() with min %d = %v, want nil", cfg.MinRoomSize, err)
	}
}

func TestNewGeneratorRejectsBadConfig(t *testing.T) {
	cfg := smallConfig(1)
	cfg.MinRoomSize = 20

	if _, err := NewGenerator(cfg, groupCatalog()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewGenerator(min > max) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewGenerator(nil, groupCatalog()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewGenerator(nil) error = %v, want ErrInvalidConfig", err)
	}
}

func TestGeneratorGenerate(t *testing.T) {
	gen, err := NewGenerator(smallConfig(549234), groupCatalog())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}

	m, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if m.Width != 40 || m.Height != 40 {
		t.Errorf("map size = %dx%d, want 40x40", m.Width, m.Height)
	}
	if m.Seed != 549234 {
		t.Errorf("Seed = %d, want 549234 (first attempt)", m.Seed)
	}
	if m.Plain {
		t.Error("map marked plain without falling back")
	}
	if len(m.Rooms) < 2 {
		t.Fatalf("got %d rooms, want at least 2", len(m.Rooms))
	}

	// Every room cell is labelled, and each room uses a single tile group
	want := 0
	for _, room := range m.Rooms {
		want += (room.W + 1) * (room.H + 1)

		first, _ := m.CategoryAt(grid.Pos{X: room.X, Y: room.Y})
		redGreen := first == wfc.CategoryEnemySpawn || first == wfc.CategoryCollectible
		for y := room.Y; y <= room.MaxY(); y++ {
			for x := room.X; x <= room.MaxX(); x++ {
				c, ok := m.Labels[grid.Pos{X: x, Y: y}]
				if !ok {
					t.Fatalf("room cell (%d, %d) is unlabelled", x, y)
				}
				inRedGreen := c == wfc.CategoryEnemySpawn || c == wfc.CategoryCollectible
				if inRedGreen != redGreen {
					t.Errorf("room %v mixes tile groups at (%d, %d)", room, x, y)
				}
			}
		}
	}
	if len(m.Labels) != want {
		t.Errorf("len(Labels) = %d, want %d", len(m.Labels), want)
	}

	// Labels are a subset of the floor
	for p := range m.Labels {
		if !m.Floor.Has(p) {
			t.Errorf("label at %v is not on the floor", p)
		}
	}

	// Corridor cells outside rooms read as plain floor
	for _, cell := range m.Cells() {
		if _, labelled := m.Labels[cell.Pos]; !labelled && cell.Category != wfc.CategoryEmpty {
			t.Errorf("unlabelled cell %v has category %q", cell.Pos, cell.Category)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	generate := func() *CompleteMap {
		gen, err := NewGenerator(smallConfig(549234), groupCatalog())
		if err != nil {
			t.Fatalf("NewGenerator() failed: %v", err)
		}
		m, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		return m
	}

	a, b := generate(), generate()
	if a.Floor.Len() != b.Floor.Len() {
		t.Fatalf("floor sizes differ: %d vs %d", a.Floor.Len(), b.Floor.Len())
	}
	ac, bc := a.Cells(), b.Cells()
	for i := range ac {
		if ac[i] != bc[i] {
			t.Fatalf("cell %d differs: %v vs %v", i, ac[i], bc[i])
		}
	}
}

func TestGeneratorUnableToGenerate(t *testing.T) {
	gen, err := NewGenerator(smallConfig(1), deadCatalog())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}

	_, err = gen.Generate()
	if !errors.Is(err, ErrUnableToGenerate) {
		t.Fatalf("Generate() error = %v, want ErrUnableToGenerate", err)
	}
	if !errors.Is(err, wfc.ErrContradiction) {
		t.Errorf("Generate() error = %v, want it to wrap ErrContradiction", err)
	}
}

func TestGeneratorFallbackPlain(t *testing.T) {
	cfg := smallConfig(1)
	cfg.FallbackPlain = true

	gen, err := NewGenerator(cfg, deadCatalog())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}

	m, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() with fallback failed: %v", err)
	}
	if !m.Plain {
		t.Error("fallback map not marked plain")
	}
	if len(m.Labels) != 0 {
		t.Errorf("fallback map has %d labels, want 0", len(m.Labels))
	}
	if m.Floor.Len() == 0 {
		t.Error("fallback map has no floor")
	}
	// Seed of the last attempt
	if want := cfg.Seed + int64((cfg.MaxRetries-1)*1000); m.Seed != want {
		t.Errorf("Seed = %d, want %d", m.Seed, want)
	}
}

func TestGenerateContextCancelled(t *testing.T) {
	gen, err := NewGenerator(smallConfig(1), groupCatalog())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gen.GenerateContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateContext() error = %v, want context.Canceled", err)
	}
}

func TestGeneratorWalkLayout(t *testing.T) {
	cfg := smallConfig(7)
	cfg.Layout = LayoutWalk
	cfg.Walk.Start = grid.Pos{X: 20, Y: 20}

	gen, err := NewGenerator(cfg, groupCatalog())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}
	m, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if len(m.Rooms) != 0 {
		t.Errorf("walk layout produced %d rooms", len(m.Rooms))
	}
	if !m.Floor.Has(cfg.Walk.Start) {
		t.Error("walk floor does not contain its start")
	}
	if len(m.Labels) != m.Floor.Len() {
		t.Errorf("len(Labels) = %d, want every one of %d floor cells", len(m.Labels), m.Floor.Len())
	}
}
