package wfc

import (
	"image/color"
	"math"
)

// DefaultTolerance is the per-channel colour difference below which two
// sampled pixels count as the same terrain.
const DefaultTolerance = 0.05

// subTileCentre returns the pixel offset of the centre of sub-tile (i, j)
func subTileCentre(tileSize, i, j int) (int, int) {
	return i*tileSize + tileSize/2, j*tileSize + tileSize/2
}

// sample reads the centre pixel of sub-tile (i, j) of t
func (t *Tile) sample(i, j int) color.Color {
	x, y := subTileCentre(t.TileSize, i, j)
	b := t.Image.Bounds()
	return t.Image.At(b.Min.X+x, b.Min.Y+y)
}

// colorsSimilar returns true if every RGB channel differs by less than tolerance
func colorsSimilar(a, b color.Color, tolerance float64) bool {
	ar, ag, ab := channels(a)
	br, bg, bb := channels(b)
	return math.Abs(ar-br) < tolerance &&
		math.Abs(ag-bg) < tolerance &&
		math.Abs(ab-bb) < tolerance
}

// Overlapping returns true if b may sit next to a in direction dir: the two
// sub-tile columns (or rows) they would share must match colour for colour.
func Overlapping(a, b *Tile, dir Direction, tolerance float64) bool {
	switch dir {
	case Right:
		for i := 1; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if !colorsSimilar(a.sample(i, j), b.sample(i-1, j), tolerance) {
					return false
				}
			}
		}
	case Left:
		for i := 1; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if !colorsSimilar(a.sample(i-1, j), b.sample(i, j), tolerance) {
					return false
				}
			}
		}
	case Up:
		for j := 1; j < 3; j++ {
			for i := 0; i < 3; i++ {
				if !colorsSimilar(a.sample(i, j-1), b.sample(i, j), tolerance) {
					return false
				}
			}
		}
	case Down:
		for j := 1; j < 3; j++ {
			for i := 0; i < 3; i++ {
				if !colorsSimilar(a.sample(i, j), b.sample(i, j-1), tolerance) {
					return false
				}
			}
		}
	default:
		return false
	}
	return true
}

// AnalyzeAdjacency fills the neighbor lists of every tile by testing all
// ordered pairs, including each tile against itself. Lists are in tile index
// order. The relation is left exactly as measured; a tile allowing another to
// its right does not force the reverse entry.
func AnalyzeAdjacency(tiles []*Tile, tolerance float64) {
	for _, t := range tiles {
		for _, dir := range AllDirections() {
			t.Neighbors[dir] = t.Neighbors[dir][:0]
		}
		for _, other := range tiles {
			for _, dir := range AllDirections() {
				if Overlapping(t, other, dir, tolerance) {
					t.Neighbors[dir] = append(t.Neighbors[dir], other.Index)
				}
			}
		}
	}
}
