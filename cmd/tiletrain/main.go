// tiletrain learns a tile catalog from a sample image and stores it.
//
// Usage:
//
//	go run ./cmd/tiletrain -image data/sample.png -summary data/catalog.yaml
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/lawnchairsociety/levelgen/internal/config"
	"github.com/lawnchairsociety/levelgen/internal/database"
	"github.com/lawnchairsociety/levelgen/internal/export"
	"github.com/lawnchairsociety/levelgen/internal/logger"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

func main() {
	configFile := flag.String("config", "data/levelgen.yaml", "Path to levelgen config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	imageFile := flag.String("image", "", "Sample image (default: training.sample_image from config)")
	tileSize := flag.Int("tile-size", 0, "Sub-tile size in pixels (default: training.tile_size from config)")
	tolerance := flag.Float64("tolerance", 0, "Colour tolerance 0-1 (default: training.tolerance from config)")
	summaryFile := flag.String("summary", "", "Write a YAML catalog summary to this file")
	noStore := flag.Bool("no-store", false, "Do not store the catalog in the database")
	flag.Parse()

	if err := logger.Setup(*loggingConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	if *imageFile != "" {
		cfg.Training.SampleImage = *imageFile
	}
	if *tileSize > 0 {
		cfg.Training.TileSize = *tileSize
	}
	if *tolerance > 0 {
		cfg.Training.Tolerance = *tolerance
	}

	img, err := wfc.LoadImage(cfg.Training.SampleImage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var catalog *wfc.Catalog
	if *noStore {
		catalog, err = wfc.NewCatalog(img, cfg.Training.TileSize, cfg.Training.Tolerance)
	} else {
		catalog, err = trainStored(cfg.Storage, img, cfg.Training)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training catalog: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Catalog ready",
		"image", cfg.Training.SampleImage,
		"fingerprint", catalog.Source,
		"tiles", catalog.Len())

	if *summaryFile != "" {
		if err := export.WriteCatalogFile(catalog, *summaryFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog summary written to %s\n", *summaryFile)
	}
	fmt.Printf("Catalog %s: %d tiles\n", catalog.Source, catalog.Len())
}

// trainStored learns the catalog through the store so a sample is only
// analysed once
func trainStored(storage database.Config, img image.Image, training config.TrainingConfig) (*wfc.Catalog, error) {
	db, err := database.Open(storage)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	catalog, cached, err := db.TrainCatalog(img, training.TileSize, training.Tolerance)
	if err != nil {
		return nil, err
	}
	logger.Info("Catalog stored", "driver", storage.Driver, "cached", cached)
	return catalog, nil
}
