package bsp

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/levelgen/internal/grid"
)

const (
	RoomInset       = 5 // Cells trimmed from a room's width and height to keep a margin from the partition edge
	maxRoomAttempts = 8 // Sizing retries before a leaf is reported as degenerate
)

// CarveRooms places one room in every leaf, records it on the leaf and adds
// its cells (inclusive bounds) to floor. Rooms are returned in left-to-right
// traversal order, which is the order Connect links them in.
func CarveRooms(root *Node, minRoomSize, maxRoomSize int, floor grid.FloorSet, rng *rand.Rand) ([]grid.Rect, error) {
	if minRoomSize < 1 || maxRoomSize < minRoomSize {
		return nil, fmt.Errorf("%w: min %d max %d", ErrInvalidRoomSize, minRoomSize, maxRoomSize)
	}

	var rooms []grid.Rect
	if err := carveNode(root, minRoomSize, maxRoomSize, floor, rng, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func carveNode(node *Node, minSize, maxSize int, floor grid.FloorSet, rng *rand.Rand, rooms *[]grid.Rect) error {
	if !node.IsLeaf() {
		if err := carveNode(node.Left, minSize, maxSize, floor, rng, rooms); err != nil {
			return err
		}
		return carveNode(node.Right, minSize, maxSize, floor, rng, rooms)
	}

	room, err := placeRoom(node.Area, minSize, maxSize, rng)
	if err != nil {
		return err
	}

	node.Room = &room
	*rooms = append(*rooms, room)

	for x := room.X; x <= room.MaxX(); x++ {
		for y := room.Y; y <= room.MaxY(); y++ {
			floor.Add(grid.Pos{X: x, Y: y})
		}
	}
	return nil
}

// placeRoom picks a randomized room inside area and trims it by RoomInset.
func placeRoom(area grid.Rect, minSize, maxSize int, rng *rand.Rand) (grid.Rect, error) {
	for attempt := 0; attempt < maxRoomAttempts; attempt++ {
		w := randomOffset(rng, minSize, min(area.W, maxSize))
		h := randomOffset(rng, minSize, min(area.H, maxSize))

		x := randomOffset(rng, area.X, area.MaxX()-w)
		y := randomOffset(rng, area.Y, area.MaxY()-h)

		room := grid.NewRect(x, y, w-RoomInset, h-RoomInset)
		if room.Valid() {
			return room, nil
		}
	}
	return grid.Rect{}, fmt.Errorf("%w: no room fits leaf %v (min %d, inset %d)",
		ErrDegenerateGeometry, area, minSize, RoomInset)
}

// Rooms collects the rooms already carved into the tree, in traversal order
func Rooms(root *Node) []grid.Rect {
	var rooms []grid.Rect
	for _, leaf := range root.Leaves() {
		if leaf.Room != nil {
			rooms = append(rooms, *leaf.Room)
		}
	}
	return rooms
}
