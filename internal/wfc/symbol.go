package wfc

import (
	"image/color"
	"math"
)

// Category is the terrain role of a collapsed cell, handed to the layer
// that places world objects. The string values are the codes that layer
// switches on.
type Category string

const (
	CategoryEmpty       Category = "E"  // Plain floor
	CategoryHazard      Category = "H"  // Harmful terrain
	CategoryEnemySpawn  Category = "ES" // Threat marker
	CategoryCollectible Category = "C"  // Pickup
	CategoryPlayerSpawn Category = "PS" // Player start marker
)

// AllCategories returns every category, fallback last
func AllCategories() []Category {
	return []Category{CategoryHazard, CategoryEnemySpawn, CategoryCollectible, CategoryPlayerSpawn, CategoryEmpty}
}

// Name returns a human readable name for the category
func (c Category) Name() string {
	switch c {
	case CategoryEmpty:
		return "empty"
	case CategoryHazard:
		return "hazard"
	case CategoryEnemySpawn:
		return "enemy_spawn"
	case CategoryCollectible:
		return "collectible"
	case CategoryPlayerSpawn:
		return "player_spawn"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category code, falling back to CategoryEmpty
func ParseCategory(code string) Category {
	for _, c := range AllCategories() {
		if string(c) == code {
			return c
		}
	}
	return CategoryEmpty
}

// roundedRGB is a colour with every channel rounded to 0 or 1
type roundedRGB struct {
	R, G, B uint8
}

// symbolTable is checked in order; the first match wins.
var symbolTable = []struct {
	color    roundedRGB
	category Category
}{
	{roundedRGB{0, 0, 0}, CategoryHazard},
	{roundedRGB{1, 0, 0}, CategoryEnemySpawn},
	{roundedRGB{0, 1, 0}, CategoryCollectible},
	{roundedRGB{0, 0, 1}, CategoryPlayerSpawn},
}

// SymbolForTile maps a tile to its category using the centre pixel of the
// middle sub-tile. Unmatched colours map to CategoryEmpty.
func SymbolForTile(t *Tile) Category {
	if t == nil || t.Image == nil {
		return CategoryEmpty
	}
	centre := t.TileSize + t.TileSize/2
	b := t.Image.Bounds()
	return SymbolForColor(t.Image.At(b.Min.X+centre, b.Min.Y+centre))
}

// SymbolForColor rounds c to {0,1} per channel and looks it up in the
// symbol table.
func SymbolForColor(c color.Color) Category {
	r, g, b := channels(c)
	key := roundedRGB{roundUnit(r), roundUnit(g), roundUnit(b)}
	for _, entry := range symbolTable {
		if entry.color == key {
			return entry.category
		}
	}
	return CategoryEmpty
}

func roundUnit(v float64) uint8 {
	if math.Round(v) >= 1 {
		return 1
	}
	return 0
}

// channels returns the non-premultiplied RGB of c on a 0-1 scale
func channels(c color.Color) (r, g, b float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float64(n.R) / 255, float64(n.G) / 255, float64(n.B) / 255
}
