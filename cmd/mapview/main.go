// mapview draws a generated map in the terminal.
//
// Usage:
//
//	go run ./cmd/mapview -input data/level.yaml
//	go run ./cmd/mapview -id 3
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/lawnchairsociety/levelgen/internal/config"
	"github.com/lawnchairsociety/levelgen/internal/database"
	"github.com/lawnchairsociety/levelgen/internal/export"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/render"
)

func main() {
	inputFile := flag.String("input", "", "Path to a map YAML file")
	mapID := flag.Int64("id", 0, "Stored map id to load from the database instead of a file")
	configFile := flag.String("config", "data/levelgen.yaml", "Path to levelgen config YAML file (for -id)")
	colorMode := flag.String("color", "auto", "Colour output: auto, always or never")
	clip := flag.Bool("clip", true, "Clip rows to the terminal width")
	showLegend := flag.Bool("legend", true, "Show legend")
	flag.Parse()

	m, err := loadMap(*inputFile, *mapID, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdout.Fd())
	isTerminal := term.IsTerminal(fd)

	var useColor bool
	switch *colorMode {
	case "always":
		useColor = true
	case "never":
		useColor = false
	case "auto":
		useColor = isTerminal
	default:
		fmt.Fprintf(os.Stderr, "Unknown colour mode %q\n", *colorMode)
		os.Exit(1)
	}

	r := render.New(useColor)
	if *clip && isTerminal {
		if width, _, err := term.GetSize(fd); err == nil {
			r.MaxWidth = width
		}
	}

	for _, line := range r.Lines(m) {
		fmt.Println(line)
	}
	if *showLegend {
		fmt.Println(r.Legend(m))
	}
}

func loadMap(inputFile string, id int64, configFile string) (*mapgen.CompleteMap, error) {
	if id == 0 {
		if inputFile == "" {
			return nil, fmt.Errorf("one of -input or -id is required")
		}
		return export.ReadMapFile(inputFile)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.LoadMap(id)
}
