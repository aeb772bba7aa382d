package mapgen

import (
	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

// CompleteMap is the output of generation: the floor plan plus a category for
// every labelled floor cell.
type CompleteMap struct {
	Width, Height int
	Seed          int64 // Seed of the attempt that produced the map
	Layout        Layout
	Floor         grid.FloorSet
	Rooms         []grid.Rect
	Labels        map[grid.Pos]wfc.Category
	Plain         bool // Produced by the plain fallback; no labels
}

// Cell is one floor cell and its category
type Cell struct {
	Pos      grid.Pos
	Category wfc.Category
}

// Assemble packages a floor plan and its labels. Labels outside the floor
// are dropped.
func Assemble(floor grid.FloorSet, labels map[grid.Pos]wfc.Category) *CompleteMap {
	kept := make(map[grid.Pos]wfc.Category, len(labels))
	for p, c := range labels {
		if floor.Has(p) {
			kept[p] = c
		}
	}
	return &CompleteMap{Floor: floor, Labels: kept}
}

// CategoryAt returns the category of a floor cell. Unlabelled floor is
// CategoryEmpty; ok is false for cells that are not floor.
func (m *CompleteMap) CategoryAt(p grid.Pos) (wfc.Category, bool) {
	if !m.Floor.Has(p) {
		return "", false
	}
	if c, ok := m.Labels[p]; ok {
		return c, true
	}
	return wfc.CategoryEmpty, true
}

// Cells returns every floor cell with its category, ordered by Y then X
func (m *CompleteMap) Cells() []Cell {
	positions := m.Floor.Sorted()
	out := make([]Cell, len(positions))
	for i, p := range positions {
		c, _ := m.CategoryAt(p)
		out[i] = Cell{Pos: p, Category: c}
	}
	return out
}

// Counts returns how many floor cells carry each category
func (m *CompleteMap) Counts() map[wfc.Category]int {
	counts := make(map[wfc.Category]int)
	m.Floor.Each(func(p grid.Pos) {
		c, _ := m.CategoryAt(p)
		counts[c]++
	})
	return counts
}

// Bounds returns the area to draw: the map area grown to include any floor
// that lies outside it
func (m *CompleteMap) Bounds() grid.Rect {
	area := grid.NewRect(0, 0, m.Width, m.Height)
	fb, ok := m.Floor.Bounds()
	if !ok {
		return area
	}
	if !area.Valid() {
		return fb
	}
	minX, minY := min(area.X, fb.X), min(area.Y, fb.Y)
	maxX, maxY := max(area.X+area.W, fb.X+fb.W), max(area.Y+area.H, fb.Y+fb.H)
	return grid.NewRect(minX, minY, maxX-minX, maxY-minY)
}
