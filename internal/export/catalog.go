package export

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

// CatalogYAML is the summary of a learned catalog. Tile images are not
// included; the database keeps those.
type CatalogYAML struct {
	Fingerprint string         `yaml:"fingerprint"`
	TileSize    int            `yaml:"tile_size"`
	Tolerance   float64        `yaml:"tolerance"`
	Symbols     map[string]int `yaml:"symbols"`
	Tiles       []TileYAML     `yaml:"tiles"`
}

// TileYAML lists one tile's symbol and allowed neighbors
type TileYAML struct {
	Index     int              `yaml:"index"`
	Symbol    string           `yaml:"symbol"`
	Neighbors map[string][]int `yaml:"neighbors"`
}

// WriteCatalogFile writes a catalog summary to a YAML file
func WriteCatalogFile(c *wfc.Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteCatalog(f, c); err != nil {
		return err
	}
	return f.Close()
}

// WriteCatalog writes a catalog summary. Symbols are listed in category
// order and neighbors in direction order.
func WriteCatalog(w io.Writer, c *wfc.Catalog) error {
	fmt.Fprintf(w, "# Tile catalog %s\n", c.Source)
	fmt.Fprintf(w, "# Tiles: %d\n\n", c.Len())

	counts := make(map[wfc.Category]int)
	for i := range c.Tiles {
		counts[c.Symbol(i)]++
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	addScalarField(node, "fingerprint", c.Source)
	addIntField(node, "tile_size", c.TileSize)
	addScalarField(node, "tolerance", strconv.FormatFloat(c.Tolerance, 'g', -1, 64))

	symbols := &yaml.Node{Kind: yaml.MappingNode}
	for _, cat := range wfc.AllCategories() {
		if counts[cat] > 0 {
			addIntField(symbols, string(cat), counts[cat])
		}
	}
	addNode(node, "symbols", symbols)

	tiles := &yaml.Node{Kind: yaml.SequenceNode}
	for i, t := range c.Tiles {
		tile := &yaml.Node{Kind: yaml.MappingNode}
		addIntField(tile, "index", t.Index)
		addScalarField(tile, "symbol", string(c.Symbol(i)))

		neighbors := &yaml.Node{Kind: yaml.MappingNode}
		for _, d := range wfc.AllDirections() {
			addNode(neighbors, d.String(), flowInts(t.Neighbors[d]...))
		}
		addNode(tile, "neighbors", neighbors)

		tiles.Content = append(tiles.Content, tile)
	}
	addNode(node, "tiles", tiles)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ReadCatalogSummary parses a summary written by WriteCatalog
func ReadCatalogSummary(r io.Reader) (*CatalogYAML, error) {
	var doc CatalogYAML
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog summary: %w", err)
	}
	return &doc, nil
}
