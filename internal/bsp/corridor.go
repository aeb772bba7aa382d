package bsp

import "github.com/lawnchairsociety/levelgen/internal/grid"

// Connect joins each room to the next one in the list with an L-shaped
// corridor. Only consecutive rooms are linked; rooms that are not adjacent in
// the list are connected only if some corridor happens to cross them.
func Connect(rooms []grid.Rect, floor grid.FloorSet) {
	for i := 0; i < len(rooms)-1; i++ {
		for _, p := range CorridorPath(rooms[i], rooms[i+1]) {
			floor.Add(p)
		}
	}
}

// CorridorPath returns the cells walked from a's centre to b's centre, first
// along X then along Y. Both centres are included.
func CorridorPath(a, b grid.Rect) []grid.Pos {
	from := a.Center()
	to := b.Center()

	path := make([]grid.Pos, 0, abs(to.X-from.X)+abs(to.Y-from.Y)+1)
	current := from

	for current.X != to.X {
		path = append(path, current)
		current.X += sign(to.X - current.X)
	}
	for current.Y != to.Y {
		path = append(path, current)
		current.Y += sign(to.Y - current.Y)
	}

	return append(path, to)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
