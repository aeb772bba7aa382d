package wfc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/levelgen/internal/grid"
)

var (
	ErrContradiction = errors.New("wfc: contradiction - no valid tiles for cell")
	ErrMaxIterations = errors.New("wfc: exceeded maximum iterations")
	ErrInvalidSize   = errors.New("wfc: invalid grid size")
)

// ContradictionError reports the cell whose options were narrowed to nothing
type ContradictionError struct {
	X, Y int
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("wfc: contradiction at (%d, %d) - no valid tiles for cell", e.X, e.Y)
}

func (e *ContradictionError) Unwrap() error {
	return ErrContradiction
}

// Cell represents a single cell in the WFC grid during solving
type Cell struct {
	X, Y      int
	Options   []int // Tile indices still possible, in catalog order
	Collapsed bool  // Whether this cell has been assigned
	Visited   bool  // Touched by the most recent propagation pass
}

// Entropy returns the number of possible states
func (c *Cell) Entropy() int {
	return len(c.Options)
}

// Tile returns the assigned tile index, or -1 if the cell is not collapsed
func (c *Cell) Tile() int {
	if !c.Collapsed || len(c.Options) != 1 {
		return -1
	}
	return c.Options[0]
}

// Solver implements Wave Function Collapse over a grid of tile indices.
// A solver owns its grid; the catalog is only read.
type Solver struct {
	Width, Height int
	Grid          [][]*Cell
	Catalog       *Catalog
	Steps         int // Selections made so far
	rng           *rand.Rand
}

// NewSolver creates a new WFC solver with the given dimensions
func NewSolver(width, height int, catalog *Catalog, seed int64) (*Solver, error) {
	return NewSolverWithRand(width, height, catalog, rand.New(rand.NewSource(seed)))
}

// NewSolverWithRand creates a solver drawing from an existing random source
func NewSolverWithRand(width, height int, catalog *Catalog, rng *rand.Rand) (*Solver, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	s := &Solver{
		Width:   width,
		Height:  height,
		Catalog: catalog,
		rng:     rng,
	}
	s.initializeGrid()
	return s, nil
}

// initializeGrid gives every cell the full set of tiles
func (s *Solver) initializeGrid() {
	n := s.Catalog.Len()
	s.Grid = make([][]*Cell, s.Height)
	for y := 0; y < s.Height; y++ {
		s.Grid[y] = make([]*Cell, s.Width)
		for x := 0; x < s.Width; x++ {
			options := make([]int, n)
			for i := range options {
				options[i] = i
			}
			s.Grid[y][x] = &Cell{X: x, Y: y, Options: options}
		}
	}
}

// Solve runs selection, collapse and propagation until every cell is
// collapsed. It returns the chosen tile index of each cell as [y][x].
func (s *Solver) Solve() ([][]int, error) {
	maxIterations := s.Width*s.Height + 1

	for i := 0; i < maxIterations; i++ {
		done, err := s.Step()
		if err != nil {
			return nil, err
		}
		if done {
			return s.Result(), nil
		}
	}
	return nil, ErrMaxIterations
}

// Step performs one selection, collapse and propagation. It reports done
// once no uncollapsed cell remains.
func (s *Solver) Step() (bool, error) {
	candidates := s.lowestEntropyCells()
	if len(candidates) == 0 {
		return true, nil
	}

	cell := candidates[s.rng.Intn(len(candidates))]
	choice := cell.Options[s.rng.Intn(len(cell.Options))]
	cell.Options = []int{choice}
	cell.Collapsed = true
	s.Steps++

	if err := s.propagate(cell); err != nil {
		return false, err
	}
	return false, nil
}

// lowestEntropyCells returns the uncollapsed cells with the fewest options,
// in row-major order
func (s *Solver) lowestEntropyCells() []*Cell {
	var candidates []*Cell
	lowest := -1

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			cell := s.Grid[y][x]
			if cell.Collapsed {
				continue
			}
			e := cell.Entropy()
			switch {
			case lowest == -1 || e < lowest:
				lowest = e
				candidates = append(candidates[:0], cell)
			case e == lowest:
				candidates = append(candidates, cell)
			}
		}
	}
	return candidates
}

// propagate narrows neighbors breadth-first from start until nothing changes.
// A cell narrowed to a single option is committed as collapsed.
func (s *Solver) propagate(start *Cell) error {
	for _, row := range s.Grid {
		for _, cell := range row {
			cell.Visited = false
		}
	}

	queue := []*Cell{start}
	queued := mapset.New[grid.Pos]()
	queued.Put(grid.Pos{X: start.X, Y: start.Y})

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		queued.Remove(grid.Pos{X: current.X, Y: current.Y})
		current.Visited = true

		for _, dir := range AllDirections() {
			neighbor := s.getNeighbor(current.X, current.Y, dir)
			if neighbor == nil || neighbor.Collapsed {
				continue
			}

			if !s.constrain(neighbor, s.allowed(current, dir)) {
				continue
			}
			neighbor.Visited = true

			if len(neighbor.Options) == 0 {
				return &ContradictionError{X: neighbor.X, Y: neighbor.Y}
			}
			if len(neighbor.Options) == 1 {
				neighbor.Collapsed = true
			}

			p := grid.Pos{X: neighbor.X, Y: neighbor.Y}
			if !queued.Has(p) {
				queued.Put(p)
				queue = append(queue, neighbor)
			}
		}
	}
	return nil
}

// allowed returns the tiles permitted in direction dir of cell by any of its
// remaining options
func (s *Solver) allowed(cell *Cell, dir Direction) map[int]bool {
	allowed := make(map[int]bool)
	for _, o := range cell.Options {
		for _, n := range s.Catalog.Tiles[o].Neighbors[dir] {
			allowed[n] = true
		}
	}
	return allowed
}

// constrain removes options not in allowed, keeping order. It returns true
// if anything was removed.
func (s *Solver) constrain(cell *Cell, allowed map[int]bool) bool {
	kept := cell.Options[:0:0]
	for _, o := range cell.Options {
		if allowed[o] {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(cell.Options) {
		return false
	}
	cell.Options = kept
	return true
}

// neighborCoords returns the coordinates of the neighbor in the given direction
func (s *Solver) neighborCoords(x, y int, dir Direction) (int, int) {
	dx, dy := dir.Delta()
	return x + dx, y + dy
}

// getNeighbor returns the neighbor cell, or nil if it lies outside the grid
func (s *Solver) getNeighbor(x, y int, dir Direction) *Cell {
	nx, ny := s.neighborCoords(x, y, dir)
	if nx < 0 || nx >= s.Width || ny < 0 || ny >= s.Height {
		return nil
	}
	return s.Grid[ny][nx]
}

// Result returns the tile index of every cell as [y][x]; uncollapsed cells are -1
func (s *Solver) Result() [][]int {
	out := make([][]int, s.Height)
	for y := 0; y < s.Height; y++ {
		out[y] = make([]int, s.Width)
		for x := 0; x < s.Width; x++ {
			out[y][x] = s.Grid[y][x].Tile()
		}
	}
	return out
}

// Symbols maps a solved grid of tile indices to categories
func (s *Solver) Symbols(result [][]int) [][]Category {
	out := make([][]Category, len(result))
	for y, row := range result {
		out[y] = make([]Category, len(row))
		for x, idx := range row {
			if idx < 0 {
				out[y][x] = CategoryEmpty
				continue
			}
			out[y][x] = s.Catalog.Symbol(idx)
		}
	}
	return out
}
