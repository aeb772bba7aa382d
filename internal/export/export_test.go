package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

func sampleMap() *mapgen.CompleteMap {
	floor := grid.NewFloorSet()
	for x := 1; x <= 3; x++ {
		floor.Add(grid.Pos{X: x, Y: 1})
	}
	floor.Add(grid.Pos{X: 3, Y: 2})

	m := mapgen.Assemble(floor, map[grid.Pos]wfc.Category{
		{X: 1, Y: 1}: wfc.CategoryPlayerSpawn,
		{X: 2, Y: 1}: wfc.CategoryEmpty,
		{X: 3, Y: 1}: wfc.CategoryHazard,
	})
	m.Width, m.Height = 5, 4
	m.Seed = 549234
	m.Layout = mapgen.LayoutBSP
	m.Rooms = []grid.Rect{grid.NewRect(1, 1, 2, 0)}
	return m
}

func TestWriteMapRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMap(&buf, sampleMap()); err != nil {
		t.Fatalf("WriteMap() failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Generated with seed: 549234",
		"width: 5",
		"layout: bsp",
		"origin: [0, 0]",
		"- [1, 1, 2, 0]",
		`- "#####"`,
		`- "#p.H#"`,
		`- "###+#"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Keys keep their written order
	if strings.Index(out, "width:") > strings.Index(out, "rows:") {
		t.Error("width written after rows")
	}
}

func TestMapRoundTrip(t *testing.T) {
	original := sampleMap()
	path := filepath.Join(t.TempDir(), "level.yaml")

	if err := WriteMapFile(original, path); err != nil {
		t.Fatalf("WriteMapFile() failed: %v", err)
	}
	loaded, err := ReadMapFile(path)
	if err != nil {
		t.Fatalf("ReadMapFile() failed: %v", err)
	}

	if loaded.Width != 5 || loaded.Height != 4 || loaded.Seed != 549234 {
		t.Errorf("header = %dx%d seed %d", loaded.Width, loaded.Height, loaded.Seed)
	}
	if loaded.Layout != mapgen.LayoutBSP || loaded.Plain {
		t.Errorf("Layout = %q, Plain = %v", loaded.Layout, loaded.Plain)
	}
	if len(loaded.Rooms) != 1 || loaded.Rooms[0] != original.Rooms[0] {
		t.Errorf("Rooms = %v, want %v", loaded.Rooms, original.Rooms)
	}

	want, got := original.Cells(), loaded.Cells()
	if len(got) != len(want) {
		t.Fatalf("loaded %d cells, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
	// The corridor cell stays unlabelled
	if _, ok := loaded.Labels[grid.Pos{X: 3, Y: 2}]; ok {
		t.Error("corridor cell read back with a label")
	}
}

func TestMapRoundTripNegativeOrigin(t *testing.T) {
	floor := grid.NewFloorSet()
	floor.Add(grid.Pos{X: -2, Y: -1})
	floor.Add(grid.Pos{X: 0, Y: 0})
	m := mapgen.Assemble(floor, nil)
	m.Width, m.Height = 1, 1
	m.Layout = mapgen.LayoutWalk
	m.Plain = true

	var buf bytes.Buffer
	if err := WriteMap(&buf, m); err != nil {
		t.Fatalf("WriteMap() failed: %v", err)
	}
	loaded, err := ReadMap(&buf)
	if err != nil {
		t.Fatalf("ReadMap() failed: %v", err)
	}

	for _, p := range []grid.Pos{{X: -2, Y: -1}, {X: 0, Y: 0}} {
		if !loaded.Floor.Has(p) {
			t.Errorf("floor cell %v lost", p)
		}
	}
	if loaded.Floor.Len() != 2 {
		t.Errorf("Floor.Len() = %d, want 2", loaded.Floor.Len())
	}
	if !loaded.Plain {
		t.Error("Plain = false, want true")
	}
}

func TestReadMapErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not yaml", "rows: [unclosed"},
		{"unknown glyph", "origin: [0, 0]\nrows:\n  - \"#?#\"\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMap(strings.NewReader(tc.input))
			if !errors.Is(err, ErrInvalidMap) {
				t.Errorf("ReadMap() error = %v, want ErrInvalidMap", err)
			}
		})
	}
}

func TestWriteCatalog(t *testing.T) {
	const tileSize = 2
	stripes := []color.NRGBA{{0, 0, 0, 255}, {255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	img := image.NewNRGBA(image.Rect(0, 0, len(stripes)*tileSize, 3*tileSize))
	for x := 0; x < img.Bounds().Dx(); x++ {
		for y := 0; y < img.Bounds().Dy(); y++ {
			img.SetNRGBA(x, y, stripes[x/tileSize])
		}
	}
	catalog, err := wfc.NewCatalog(img, tileSize, wfc.DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCatalog(&buf, catalog); err != nil {
		t.Fatalf("WriteCatalog() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "right: [1]") {
		t.Errorf("expected tile 0 to list tile 1 on its right:\n%s", buf.String())
	}

	summary, err := ReadCatalogSummary(&buf)
	if err != nil {
		t.Fatalf("ReadCatalogSummary() failed: %v", err)
	}

	if summary.Fingerprint != catalog.Source {
		t.Errorf("Fingerprint = %q, want %q", summary.Fingerprint, catalog.Source)
	}
	if summary.TileSize != tileSize || summary.Tolerance != wfc.DefaultTolerance {
		t.Errorf("TileSize = %d, Tolerance = %v", summary.TileSize, summary.Tolerance)
	}
	if len(summary.Tiles) != catalog.Len() {
		t.Fatalf("len(Tiles) = %d, want %d", len(summary.Tiles), catalog.Len())
	}

	total := 0
	for _, n := range summary.Symbols {
		total += n
	}
	if total != catalog.Len() {
		t.Errorf("symbol counts sum to %d, want %d", total, catalog.Len())
	}

	for i, tile := range summary.Tiles {
		if tile.Symbol != string(catalog.Symbol(i)) {
			t.Errorf("tile %d symbol = %q, want %q", i, tile.Symbol, catalog.Symbol(i))
		}
		for _, d := range wfc.AllDirections() {
			if len(tile.Neighbors[d.String()]) != len(catalog.Tiles[i].Neighbors[d]) {
				t.Errorf("tile %d %s neighbors = %v, want %v",
					i, d, tile.Neighbors[d.String()], catalog.Tiles[i].Neighbors[d])
			}
		}
	}
}
