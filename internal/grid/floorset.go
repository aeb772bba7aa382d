package grid

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// FloorSet is the set of walkable cells. Adding a position twice is a no-op.
// Iteration order is unspecified; use Sorted for deterministic output.
type FloorSet struct {
	cells mapset.Set[Pos]
}

// NewFloorSet creates an empty floor set
func NewFloorSet() FloorSet {
	return FloorSet{cells: mapset.New[Pos]()}
}

// Add marks a position as floor
func (f FloorSet) Add(p Pos) {
	f.cells.Put(p)
}

// Has returns true if the position is floor
func (f FloorSet) Has(p Pos) bool {
	return f.cells.Has(p)
}

// Remove clears a position
func (f FloorSet) Remove(p Pos) {
	f.cells.Remove(p)
}

// Len returns the number of floor cells
func (f FloorSet) Len() int {
	return f.cells.Size()
}

// Each calls fn for every floor cell in unspecified order
func (f FloorSet) Each(fn func(p Pos)) {
	f.cells.Each(fn)
}

// Union adds every cell of other to f
func (f FloorSet) Union(other FloorSet) {
	other.Each(f.Add)
}

// Sorted returns all floor cells ordered by Y then X
func (f FloorSet) Sorted() []Pos {
	out := make([]Pos, 0, f.Len())
	f.Each(func(p Pos) {
		out = append(out, p)
	})
	SortPositions(out)
	return out
}

// Bounds returns the smallest rectangle containing every floor cell. The
// second result is false when the set is empty.
func (f FloorSet) Bounds() (Rect, bool) {
	if f.Len() == 0 {
		return Rect{}, false
	}
	first := true
	var minX, minY, maxX, maxY int
	f.Each(func(p Pos) {
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			return
		}
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	})
	return Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}

// SortPositions sorts positions by Y then X for deterministic output
func SortPositions(ps []Pos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}
