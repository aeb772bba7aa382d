package mapgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lawnchairsociety/levelgen/internal/bsp"
	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/logger"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

var ErrUnableToGenerate = errors.New("unable to generate map")

// plan is a carved floor before labelling
type plan struct {
	floor grid.FloorSet
	rooms []grid.Rect
}

// Generator handles map generation with retries
type Generator struct {
	config     *Config
	catalog    *wfc.Catalog
	maxRetries int
}

// NewGenerator creates a new map generator. The config is validated against
// the catalog before any work is done.
func NewGenerator(config *Config, catalog *wfc.Catalog) (*Generator, error) {
	if config == nil {
		return nil, &ConfigError{"config", "missing"}
	}
	if err := config.Validate(catalog); err != nil {
		return nil, err
	}
	return &Generator{
		config:     config,
		catalog:    catalog,
		maxRetries: config.MaxRetries,
	}, nil
}

// Generate creates a labelled map
func (g *Generator) Generate() (*CompleteMap, error) {
	return g.GenerateContext(context.Background())
}

// GenerateContext creates a labelled map, checking ctx between attempts and
// between rooms
func (g *Generator) GenerateContext(ctx context.Context) (*CompleteMap, error) {
	start := time.Now()

	var lastErr error
	var lastPlan *plan
	var lastSeed int64

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Each attempt gets its own seed so a failed attempt is not replayed
		seed := g.config.Seed + int64(attempt*1000)
		rng := rand.New(rand.NewSource(seed))

		p, err := g.buildPlan(rng)
		if err != nil {
			lastErr = err
			logger.Debug("Floor plan failed", "attempt", attempt, "seed", seed, "error", err)
			continue
		}
		lastPlan, lastSeed = p, seed

		labels, err := g.label(ctx, p, rng)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			logger.Debug("Labelling failed", "attempt", attempt, "seed", seed, "error", err)
			continue
		}

		m := g.finish(p, labels, seed)
		logger.Info("Map generated",
			"attempt", attempt,
			"seed", seed,
			"floor_cells", m.Floor.Len(),
			"rooms", len(m.Rooms),
			"duration", time.Since(start))
		return m, nil
	}

	if g.config.FallbackPlain && lastPlan != nil {
		logger.Warning("Falling back to plain floor plan",
			"attempts", g.maxRetries,
			"seed", lastSeed,
			"error", lastErr)
		m := g.finish(lastPlan, nil, lastSeed)
		m.Plain = true
		return m, nil
	}

	logger.Warning("Map generation failed", "attempts", g.maxRetries, "error", lastErr)
	return nil, fmt.Errorf("%w: failed after %d attempts: %w", ErrUnableToGenerate, g.maxRetries, lastErr)
}

// buildPlan carves the floor for one attempt
func (g *Generator) buildPlan(rng *rand.Rand) (*plan, error) {
	floor := grid.NewFloorSet()

	if g.config.Layout == LayoutWalk {
		if err := bsp.RandomWalk(g.config.Walk, floor, rng); err != nil {
			return nil, err
		}
		return &plan{floor: floor}, nil
	}

	root, err := bsp.Split(grid.NewRect(0, 0, g.config.Width, g.config.Height), g.config.MinRoomSize, rng)
	if err != nil {
		return nil, err
	}
	rooms, err := bsp.CarveRooms(root, g.config.MinRoomSize, g.config.MaxRoomSize, floor, rng)
	if err != nil {
		return nil, err
	}
	bsp.Connect(rooms, floor)

	return &plan{floor: floor, rooms: rooms}, nil
}

// label runs one solve per room. Walk layouts have no rooms, so their whole
// bounding box is solved and only floor cells keep a label.
func (g *Generator) label(ctx context.Context, p *plan, rng *rand.Rand) (map[grid.Pos]wfc.Category, error) {
	regions := make([]grid.Rect, 0, len(p.rooms))
	for _, room := range p.rooms {
		// Carved rooms span X..MaxX inclusive
		regions = append(regions, grid.NewRect(room.X, room.Y, room.W+1, room.H+1))
	}
	if len(regions) == 0 {
		if bounds, ok := p.floor.Bounds(); ok {
			regions = append(regions, bounds)
		}
	}

	labels := make(map[grid.Pos]wfc.Category)
	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		solver, err := wfc.NewSolverWithRand(region.W, region.H, g.catalog, rng)
		if err != nil {
			return nil, err
		}
		result, err := solver.Solve()
		if err != nil {
			return nil, fmt.Errorf("region %d %s: %w", i, region, err)
		}

		for y, row := range result {
			for x, idx := range row {
				pos := grid.Pos{X: region.X + x, Y: region.Y + y}
				if p.floor.Has(pos) {
					labels[pos] = g.catalog.Symbol(idx)
				}
			}
		}
	}
	return labels, nil
}

func (g *Generator) finish(p *plan, labels map[grid.Pos]wfc.Category, seed int64) *CompleteMap {
	m := Assemble(p.floor, labels)
	m.Width = g.config.Width
	m.Height = g.config.Height
	m.Seed = seed
	m.Layout = g.config.Layout
	m.Rooms = p.rooms
	return m
}
