package mapgen

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/levelgen/internal/bsp"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

// Layout selects how the floor plan is carved
type Layout string

const (
	LayoutBSP  Layout = "bsp"  // Partitioned rooms joined by corridors
	LayoutWalk Layout = "walk" // Organic cave from random walks
)

var ErrInvalidConfig = errors.New("mapgen: invalid configuration")

// ConfigError describes a configuration value that cannot produce a map
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mapgen: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config contains parameters for map generation
type Config struct {
	Width, Height int
	MinRoomSize   int
	MaxRoomSize   int
	Layout        Layout
	Walk          bsp.WalkConfig
	Seed          int64
	MaxRetries    int  // Attempts before giving up
	FallbackPlain bool // Return the unlabelled floor plan instead of failing
}

// DefaultConfig returns the parameters of a standard 100x100 dungeon
func DefaultConfig(seed int64) *Config {
	walk := bsp.DefaultWalkConfig()
	walk.Start.X, walk.Start.Y = 50, 50

	return &Config{
		Width:       100,
		Height:      100,
		MinRoomSize: 20,
		MaxRoomSize: 30,
		Layout:      LayoutBSP,
		Walk:        walk,
		Seed:        seed,
		MaxRetries:  50,
	}
}

// Validate checks the config against the catalog it will be used with
func (c *Config) Validate(catalog *wfc.Catalog) error {
	if c.Width < 1 || c.Height < 1 {
		return &ConfigError{"dimensions", fmt.Sprintf("%dx%d must be positive", c.Width, c.Height)}
	}
	if c.MaxRetries < 1 {
		return &ConfigError{"max_retries", fmt.Sprintf("%d must be at least 1", c.MaxRetries)}
	}

	switch c.Layout {
	case LayoutBSP:
		if c.MinRoomSize > c.MaxRoomSize {
			return &ConfigError{"room size", fmt.Sprintf("min %d exceeds max %d", c.MinRoomSize, c.MaxRoomSize)}
		}
		if c.MinRoomSize <= bsp.RoomInset {
			return &ConfigError{"min_room_size", fmt.Sprintf(
				"%d must be at least %d: rooms are carved %d cells smaller than their partition, a fixed margin",
				c.MinRoomSize, bsp.RoomInset+1, bsp.RoomInset)}
		}
		if c.Width < c.MinRoomSize || c.Height < c.MinRoomSize {
			return &ConfigError{"dimensions", fmt.Sprintf("%dx%d cannot hold a room of %d", c.Width, c.Height, c.MinRoomSize)}
		}
	case LayoutWalk:
		if c.Walk.Iterations < 1 || c.Walk.WalkLength < 1 {
			return &ConfigError{"walk", fmt.Sprintf("iterations %d and length %d must be positive", c.Walk.Iterations, c.Walk.WalkLength)}
		}
	default:
		return &ConfigError{"layout", fmt.Sprintf("unknown layout %q", c.Layout)}
	}

	if catalog.Len() == 0 {
		return &ConfigError{"catalog", "no tiles"}
	}
	if catalog.TileSize < 1 {
		return &ConfigError{"tile_size", fmt.Sprintf("%d must be positive", catalog.TileSize)}
	}
	if catalog.Tolerance <= 0 || catalog.Tolerance > 1 {
		return &ConfigError{"tolerance", fmt.Sprintf("%v must be in (0,1]", catalog.Tolerance)}
	}
	return nil
}
