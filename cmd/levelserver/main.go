// levelserver serves map generation over websocket at /generate.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/levelgen/internal/config"
	"github.com/lawnchairsociety/levelgen/internal/database"
	"github.com/lawnchairsociety/levelgen/internal/logger"
	"github.com/lawnchairsociety/levelgen/internal/server"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

func main() {
	configFile := flag.String("config", "data/levelgen.yaml", "Path to levelgen config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	listen := flag.String("listen", "", "Listen address (default: server.listen from config)")
	noStore := flag.Bool("no-store", false, "Do not store generated maps")
	flag.Parse()

	if err := logger.Setup(*loggingConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting level generation service")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	img, err := wfc.LoadImage(cfg.Training.SampleImage)
	if err != nil {
		logger.Error("Failed to load sample image", "path", cfg.Training.SampleImage, "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Storage)
	if err != nil {
		logger.Error("Failed to open database", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	catalog, cached, err := db.TrainCatalog(img, cfg.Training.TileSize, cfg.Training.Tolerance)
	if err != nil {
		logger.Error("Failed to train catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("Catalog loaded", "fingerprint", catalog.Source, "tiles", catalog.Len(), "cached", cached)

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.AllowedOrigins)
	}

	var store server.MapStore
	if !*noStore {
		store = db
	}
	srv := server.New(cfg.Server, cfg.MapgenConfig(), catalog, store)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("Generation service failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warning("Shutdown incomplete", "error", err)
	}
	logger.Info("Server stopped")
}
