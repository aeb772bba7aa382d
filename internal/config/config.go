package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/levelgen/internal/bsp"
	"github.com/lawnchairsociety/levelgen/internal/database"
	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

// LevelConfig holds every setting the levelgen tools read from YAML.
type LevelConfig struct {
	Map        MapConfig        `yaml:"map"`
	Training   TrainingConfig   `yaml:"training"`
	Generation GenerationConfig `yaml:"generation"`
	Storage    database.Config  `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
}

// MapConfig holds the floor plan settings.
type MapConfig struct {
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	MinRoomSize int        `yaml:"min_room_size"`
	MaxRoomSize int        `yaml:"max_room_size"`
	Layout      string     `yaml:"layout"` // bsp or walk
	Walk        WalkConfig `yaml:"walk"`
}

// WalkConfig holds the random walk settings used by the walk layout.
type WalkConfig struct {
	StartX      int  `yaml:"start_x"`
	StartY      int  `yaml:"start_y"`
	Iterations  int  `yaml:"iterations"`
	Length      int  `yaml:"length"`
	RandomStart bool `yaml:"random_start"`
}

// TrainingConfig holds the tile extraction settings.
type TrainingConfig struct {
	// SampleImage is the PNG, BMP or WebP the tile catalog is learned from.
	SampleImage string `yaml:"sample_image"`

	// TileSize is the sub-tile edge in pixels. Tiles are 3x3 sub-tiles.
	TileSize int `yaml:"tile_size"`

	// Tolerance is the per-channel colour difference, on a 0-1 scale,
	// under which two sampled pixels match.
	Tolerance float64 `yaml:"tolerance"`
}

// GenerationConfig holds retry and seeding settings.
type GenerationConfig struct {
	Seed          int64 `yaml:"seed"`
	MaxRetries    int   `yaml:"max_retries"`
	FallbackPlain bool  `yaml:"fallback_plain"`
}

// ServerConfig holds settings for the websocket generation service.
type ServerConfig struct {
	Listen string `yaml:"listen"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// MaxCells caps width*height of a requested map. 0 means no cap.
	MaxCells int `yaml:"max_cells"`

	// TrustProxy counts sessions against X-Forwarded-For / X-Real-IP instead
	// of the peer address. Only enable behind a reverse proxy.
	TrustProxy bool `yaml:"trust_proxy"`

	Connections ConnectionsConfig `yaml:"connections"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// DefaultConfig returns a LevelConfig matching the generator defaults.
func DefaultConfig() *LevelConfig {
	walk := bsp.DefaultWalkConfig()
	return &LevelConfig{
		Map: MapConfig{
			Width:       100,
			Height:      100,
			MinRoomSize: 20,
			MaxRoomSize: 30,
			Layout:      string(mapgen.LayoutBSP),
			Walk: WalkConfig{
				StartX:      50,
				StartY:      50,
				Iterations:  walk.Iterations,
				Length:      walk.WalkLength,
				RandomStart: walk.RandomStart,
			},
		},
		Training: TrainingConfig{
			SampleImage: "data/sample.png",
			TileSize:    wfc.DefaultTileSize,
			Tolerance:   wfc.DefaultTolerance,
		},
		Generation: GenerationConfig{
			MaxRetries: 50,
		},
		Storage: database.DefaultConfig("data/levelgen.db"),
		Server: ServerConfig{
			Listen:         ":4080",
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 4096,
			MaxCells:       250000,
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 100,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns default config. LEVELGEN_SEED overrides
// the generation seed.
func LoadConfig(path string) (*LevelConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return config, err
		}
		// Use defaults if file doesn't exist
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	if seed := os.Getenv("LEVELGEN_SEED"); seed != "" {
		v, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return config, fmt.Errorf("invalid LEVELGEN_SEED %q: %w", seed, err)
		}
		config.Generation.Seed = v
	}

	return config, nil
}

// MapgenConfig converts the map and generation sections into a generator
// config. The result is validated by mapgen.NewGenerator.
func (c *LevelConfig) MapgenConfig() *mapgen.Config {
	cfg := mapgen.DefaultConfig(c.Generation.Seed)
	cfg.Width = c.Map.Width
	cfg.Height = c.Map.Height
	cfg.MinRoomSize = c.Map.MinRoomSize
	cfg.MaxRoomSize = c.Map.MaxRoomSize
	cfg.Layout = mapgen.Layout(c.Map.Layout)
	cfg.Walk = bsp.WalkConfig{
		Start:       grid.Pos{X: c.Map.Walk.StartX, Y: c.Map.Walk.StartY},
		Iterations:  c.Map.Walk.Iterations,
		WalkLength:  c.Map.Walk.Length,
		RandomStart: c.Map.Walk.RandomStart,
	}
	cfg.MaxRetries = c.Generation.MaxRetries
	cfg.FallbackPlain = c.Generation.FallbackPlain
	return cfg
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *ServerConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
