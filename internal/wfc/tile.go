package wfc

import (
	"errors"
	"fmt"
	"image"
)

// Direction represents a cardinal direction in the grid. Up points towards
// row 0, matching image coordinates.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return d
	}
}

// Delta returns the grid offset of one step in this direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	}
	return 0, 0
}

// ParseDirection converts a direction name back to a Direction
func ParseDirection(s string) (Direction, error) {
	for _, d := range AllDirections() {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("wfc: unknown direction %q", s)
}

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// Tile is one learned terrain patch: a 3x3 block of sub-tiles cut from the
// sample image, plus the tiles that may sit next to it in each direction.
type Tile struct {
	Index     int
	TileSize  int // Edge length of one sub-tile in pixels
	Image     *image.NRGBA
	Neighbors map[Direction][]int
}

// NewTile creates a tile with empty neighbor lists
func NewTile(index, tileSize int, img *image.NRGBA) *Tile {
	t := &Tile{
		Index:     index,
		TileSize:  tileSize,
		Image:     img,
		Neighbors: make(map[Direction][]int),
	}
	for _, d := range AllDirections() {
		t.Neighbors[d] = []int{}
	}
	return t
}

// Allows returns true if tile index other may be placed in direction dir
func (t *Tile) Allows(dir Direction, other int) bool {
	for _, n := range t.Neighbors[dir] {
		if n == other {
			return true
		}
	}
	return false
}

var (
	ErrEmptyCatalog   = errors.New("wfc: tile catalog is empty")
	ErrInvalidCatalog = errors.New("wfc: invalid tile catalog")
)

// Catalog is the set of tiles learned from one sample image. It is built once
// and shared read-only by any number of solvers.
type Catalog struct {
	Tiles     []*Tile
	TileSize  int
	Tolerance float64
	Source    string // blake2b fingerprint of the sample image
}

// Len returns the number of tiles in the catalog
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Tiles)
}

// Symbol returns the category of the tile at index
func (c *Catalog) Symbol(index int) Category {
	return SymbolForTile(c.Tiles[index])
}

// Validate checks that tiles are indexed by position and that every neighbor
// index refers to a tile in the catalog.
func (c *Catalog) Validate() error {
	if c.Len() == 0 {
		return ErrEmptyCatalog
	}
	for i, t := range c.Tiles {
		if t == nil {
			return fmt.Errorf("%w: tile %d is nil", ErrInvalidCatalog, i)
		}
		if t.Index != i {
			return fmt.Errorf("%w: tile at position %d has index %d", ErrInvalidCatalog, i, t.Index)
		}
		for dir, ns := range t.Neighbors {
			for _, n := range ns {
				if n < 0 || n >= len(c.Tiles) {
					return fmt.Errorf("%w: tile %d lists neighbor %d to the %s", ErrInvalidCatalog, i, n, dir)
				}
			}
		}
	}
	return nil
}
