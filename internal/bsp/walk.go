package bsp

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/levelgen/internal/grid"
)

// WalkConfig configures the random walk floor plan
type WalkConfig struct {
	Start       grid.Pos
	Iterations  int  // Number of walks
	WalkLength  int  // Steps per walk
	RandomStart bool // Restart each walk from a random floor cell instead of the last start
}

// DefaultWalkConfig returns the walk parameters used when none are configured
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		Iterations:  10,
		WalkLength:  10,
		RandomStart: true,
	}
}

var walkSteps = [4]grid.Pos{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// RandomWalk carves an organic floor plan by repeated random walks. The plan
// has no rooms.
func RandomWalk(cfg WalkConfig, floor grid.FloorSet, rng *rand.Rand) error {
	if cfg.Iterations < 1 || cfg.WalkLength < 1 {
		return fmt.Errorf("bsp: random walk needs positive iterations and length, got %d and %d",
			cfg.Iterations, cfg.WalkLength)
	}

	current := cfg.Start
	// Insertion order, so restarts are reproducible for a seed
	var visited []grid.Pos

	for i := 0; i < cfg.Iterations; i++ {
		p := current
		for step := 0; step < cfg.WalkLength; step++ {
			if !floor.Has(p) {
				floor.Add(p)
				visited = append(visited, p)
			}
			d := walkSteps[rng.Intn(len(walkSteps))]
			p = p.Add(d.X, d.Y)
		}

		if cfg.RandomStart && len(visited) > 0 {
			current = visited[rng.Intn(len(visited))]
		}
	}
	return nil
}
