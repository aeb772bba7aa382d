package wfc

import (
	"image/color"
	"testing"
)

func TestSymbolForColor(t *testing.T) {
	tests := []struct {
		c    color.Color
		want Category
	}{
		{black, CategoryHazard},
		{red, CategoryEnemySpawn},
		{green, CategoryCollectible},
		{blue, CategoryPlayerSpawn},
		{white, CategoryEmpty},
		{color.NRGBA{255, 255, 0, 255}, CategoryEmpty},
		// Rounding: dark grey counts as black, bright red as red
		{color.NRGBA{60, 60, 60, 255}, CategoryHazard},
		{color.NRGBA{200, 30, 30, 255}, CategoryEnemySpawn},
	}

	for _, tc := range tests {
		if got := SymbolForColor(tc.c); got != tc.want {
			t.Errorf("SymbolForColor(%v) = %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestSymbolForTileReadsMiddleSubTile(t *testing.T) {
	tiles, err := ExtractTiles(stripeImage(4, white, blue, black, green, red, white), 4)
	if err != nil {
		t.Fatalf("ExtractTiles() failed: %v", err)
	}

	want := []Category{CategoryPlayerSpawn, CategoryHazard, CategoryCollectible, CategoryEnemySpawn}
	if len(tiles) != len(want) {
		t.Fatalf("len(tiles) = %d, want %d", len(tiles), len(want))
	}
	for i, tile := range tiles {
		if got := SymbolForTile(tile); got != want[i] {
			t.Errorf("SymbolForTile(tiles[%d]) = %q, want %q", i, got, want[i])
		}
	}

	catalog := &Catalog{Tiles: tiles, TileSize: 4}
	if got := catalog.Symbol(1); got != CategoryHazard {
		t.Errorf("catalog.Symbol(1) = %q, want %q", got, CategoryHazard)
	}
}

func TestSymbolClosure(t *testing.T) {
	valid := make(map[Category]bool)
	for _, c := range AllCategories() {
		valid[c] = true
	}

	// Every possible rounded colour lands in the closed category set
	for _, r := range []uint8{0, 255} {
		for _, g := range []uint8{0, 255} {
			for _, b := range []uint8{0, 255} {
				if got := SymbolForColor(color.NRGBA{r, g, b, 255}); !valid[got] {
					t.Errorf("SymbolForColor(%d,%d,%d) = %q, not a known category", r, g, b, got)
				}
			}
		}
	}

	if got := SymbolForTile(nil); got != CategoryEmpty {
		t.Errorf("SymbolForTile(nil) = %q, want %q", got, CategoryEmpty)
	}
}

func TestCategoryNameAndParse(t *testing.T) {
	tests := []struct {
		c    Category
		code string
		name string
	}{
		{CategoryEmpty, "E", "empty"},
		{CategoryHazard, "H", "hazard"},
		{CategoryEnemySpawn, "ES", "enemy_spawn"},
		{CategoryCollectible, "C", "collectible"},
		{CategoryPlayerSpawn, "PS", "player_spawn"},
	}

	for _, tc := range tests {
		if string(tc.c) != tc.code {
			t.Errorf("%s code = %q, want %q", tc.name, tc.c, tc.code)
		}
		if got := tc.c.Name(); got != tc.name {
			t.Errorf("Category(%q).Name() = %q, want %q", tc.c, got, tc.name)
		}
		if got := ParseCategory(tc.code); got != tc.c {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.code, got, tc.c)
		}
	}

	if got := ParseCategory("W"); got != CategoryEmpty {
		t.Errorf("ParseCategory(\"W\") = %q, want %q", got, CategoryEmpty)
	}
}
