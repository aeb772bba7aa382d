// Package grid provides the integer geometry shared by the floor planner and
// the tile solver: positions, rectangles and the floor cell set.
package grid

import "fmt"

// Pos is a cell coordinate. It is comparable and used directly as a map key.
type Pos struct {
	X, Y int
}

// String returns the position as "x,y"
func (p Pos) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Add returns p offset by (dx, dy)
func (p Pos) Add(dx, dy int) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// Rect is an axis-aligned integer rectangle. Values are never mutated after
// creation; helpers return new rectangles.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a rectangle
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Valid reports whether both dimensions are at least one cell.
func (r Rect) Valid() bool {
	return r.W >= 1 && r.H >= 1
}

// MaxX returns X+W. Room carving treats it as an inclusive bound.
func (r Rect) MaxX() int {
	return r.X + r.W
}

// MaxY returns Y+H. Room carving treats it as an inclusive bound.
func (r Rect) MaxY() int {
	return r.Y + r.H
}

// Center returns the integer centre of the rectangle
func (r Rect) Center() Pos {
	return Pos{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside the half-open rectangle.
func (r Rect) Contains(p Pos) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// String returns the rectangle as "x,y wxh"
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.W, r.H)
}
