// levelgen generates one labelled map and writes it as YAML.
//
// Usage:
//
//	go run ./cmd/levelgen -seed 549234 -output data/level.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lawnchairsociety/levelgen/internal/config"
	"github.com/lawnchairsociety/levelgen/internal/database"
	"github.com/lawnchairsociety/levelgen/internal/export"
	"github.com/lawnchairsociety/levelgen/internal/logger"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/render"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

func main() {
	configFile := flag.String("config", "data/levelgen.yaml", "Path to levelgen config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	seed := flag.Int64("seed", 0, "Generation seed (default: generation.seed from config, random if zero)")
	layout := flag.String("layout", "", "Floor plan layout: bsp or walk (default: map.layout from config)")
	outputFile := flag.String("output", "", "Write the map as YAML to this file (empty for stdout)")
	store := flag.Bool("store", false, "Store the catalog and the generated map in the database")
	preview := flag.Bool("preview", false, "Print a text preview of the map to stderr")
	flag.Parse()

	if err := logger.Setup(*loggingConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	if *seed != 0 {
		cfg.Generation.Seed = *seed
	}
	if cfg.Generation.Seed == 0 {
		cfg.Generation.Seed = time.Now().UnixNano()
		logger.Info("Seed selected", "seed", cfg.Generation.Seed, "random", true)
	} else {
		logger.Info("Seed selected", "seed", cfg.Generation.Seed, "random", false)
	}
	if *layout != "" {
		cfg.Map.Layout = *layout
	}

	img, err := wfc.LoadImage(cfg.Training.SampleImage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var db *database.Database
	var catalog *wfc.Catalog
	if *store {
		db, err = database.Open(cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		catalog, _, err = db.TrainCatalog(img, cfg.Training.TileSize, cfg.Training.Tolerance)
	} else {
		catalog, err = wfc.NewCatalog(img, cfg.Training.TileSize, cfg.Training.Tolerance)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training catalog: %v\n", err)
		os.Exit(1)
	}

	gen, err := mapgen.NewGenerator(cfg.MapgenConfig(), catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := gen.Generate()
	if errors.Is(err, mapgen.ErrUnableToGenerate) {
		fmt.Fprintln(os.Stderr, "Unable to generate map. Try another seed, a larger catalog or fallback_plain.")
		logger.Error("Generation failed", "error", err)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if db != nil {
		id, err := db.SaveMap(m, catalog.Source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error storing map: %v\n", err)
			os.Exit(1)
		}
		logger.Always("Map stored", "id", id, "seed", m.Seed)
	}

	if *preview {
		if err := render.New(false).Render(os.Stderr, m); err != nil {
			logger.Warning("Failed to render preview", "error", err)
		}
	}

	if *outputFile != "" {
		if err := export.WriteMapFile(m, *outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
		return
	}
	if err := export.WriteMap(os.Stdout, m); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing map: %v\n", err)
		os.Exit(1)
	}
}
