// Package bsp builds the coarse floor plan: binary space partitioning of the
// map area, one room per leaf and L-shaped corridors between rooms.
package bsp

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/levelgen/internal/grid"
)

var (
	ErrDegenerateGeometry = errors.New("bsp: degenerate rectangle")
	ErrInvalidRoomSize    = errors.New("bsp: invalid room size")
)

// Node is one region of the partition tree. A node is either a leaf (no
// children, Room set once rooms are carved) or internal (both children, no
// Room).
type Node struct {
	Area  grid.Rect
	Left  *Node
	Right *Node
	Room  *grid.Rect
}

// IsLeaf returns true if the node has not been split
func (n *Node) IsLeaf() bool {
	return n.Left == nil || n.Right == nil
}

// Leaves returns the leaf nodes in left-to-right order
func (n *Node) Leaves() []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// Depth returns the height of the tree rooted at n (a single leaf is 1)
func (n *Node) Depth() int {
	if n.IsLeaf() {
		return 1
	}
	return 1 + max(n.Left.Depth(), n.Right.Depth())
}

// Split recursively partitions area until every leaf is narrower than
// 2*minRoomSize in both dimensions.
func Split(area grid.Rect, minRoomSize int, rng *rand.Rand) (*Node, error) {
	if minRoomSize < 1 {
		return nil, fmt.Errorf("%w: min room size %d", ErrInvalidRoomSize, minRoomSize)
	}
	if !area.Valid() {
		return nil, fmt.Errorf("%w: area %v", ErrDegenerateGeometry, area)
	}

	root := &Node{Area: area}
	if err := splitNode(root, minRoomSize, rng); err != nil {
		return nil, err
	}
	return root, nil
}

func splitNode(node *Node, minSize int, rng *rand.Rand) error {
	a := node.Area
	if a.W < minSize*2 && a.H < minSize*2 {
		return nil
	}

	// Longer axis first; width < height cuts across Y
	if a.W < a.H {
		if a.H >= minSize*2 {
			splitY := randomOffset(rng, minSize, a.H-minSize)
			node.Left = &Node{Area: grid.NewRect(a.X, a.Y, a.W, splitY)}
			node.Right = &Node{Area: grid.NewRect(a.X, a.Y+splitY, a.W, a.H-splitY)}
		}
	} else if a.W >= minSize*2 {
		splitX := randomOffset(rng, minSize, a.W-minSize)
		node.Left = &Node{Area: grid.NewRect(a.X, a.Y, splitX, a.H)}
		node.Right = &Node{Area: grid.NewRect(a.X+splitX, a.Y, a.W-splitX, a.H)}
	}

	if node.Left == nil {
		return nil
	}
	if !node.Left.Area.Valid() || !node.Right.Area.Valid() {
		return fmt.Errorf("%w: split of %v produced %v and %v",
			ErrDegenerateGeometry, a, node.Left.Area, node.Right.Area)
	}

	if err := splitNode(node.Left, minSize, rng); err != nil {
		return err
	}
	return splitNode(node.Right, minSize, rng)
}

// randomOffset returns a value in [lo, hi). An empty range yields lo.
func randomOffset(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo)
}
