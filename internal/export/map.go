// Package export reads and writes generated maps and tile catalogs as YAML.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

var ErrInvalidMap = errors.New("invalid map file")

// Glyphs used in the rows of a map file
const (
	GlyphWall     = '#'
	GlyphCorridor = '+' // Floor with no label
	GlyphEmpty    = '.'
	GlyphHazard   = 'H'
	GlyphEnemy    = 'e'
	GlyphPickup   = 'c'
	GlyphPlayer   = 'p'
)

const legendComment = "# Legend: # wall, + unlabelled floor, . empty, H hazard, e enemy spawn, c collectible, p player spawn"

var categoryGlyphs = map[wfc.Category]byte{
	wfc.CategoryEmpty:       GlyphEmpty,
	wfc.CategoryHazard:      GlyphHazard,
	wfc.CategoryEnemySpawn:  GlyphEnemy,
	wfc.CategoryCollectible: GlyphPickup,
	wfc.CategoryPlayerSpawn: GlyphPlayer,
}

// MapYAML represents a map in YAML format
type MapYAML struct {
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Seed   int64    `yaml:"seed"`
	Layout string   `yaml:"layout"`
	Plain  bool     `yaml:"plain"`
	Origin [2]int   `yaml:"origin"` // Position of the first glyph of the first row
	Rooms  [][4]int `yaml:"rooms,omitempty"`
	Rows   []string `yaml:"rows"`
}

// WriteMapFile writes a map to a YAML file
func WriteMapFile(m *mapgen.CompleteMap, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteMap(f, m); err != nil {
		return err
	}
	return f.Close()
}

// WriteMap writes a map as YAML. Keys are written in a fixed order and every
// row is quoted so wall glyphs never read as comments.
func WriteMap(w io.Writer, m *mapgen.CompleteMap) error {
	bounds := m.Bounds()

	fmt.Fprintf(w, "# Level %dx%d - %s layout\n", m.Width, m.Height, m.Layout)
	fmt.Fprintf(w, "# Generated with seed: %d\n", m.Seed)
	fmt.Fprintf(w, "# Floor cells: %d, rooms: %d\n", m.Floor.Len(), len(m.Rooms))
	fmt.Fprintf(w, "%s\n\n", legendComment)

	node := &yaml.Node{Kind: yaml.MappingNode}
	addIntField(node, "width", m.Width)
	addIntField(node, "height", m.Height)
	addScalarField(node, "seed", strconv.FormatInt(m.Seed, 10))
	addScalarField(node, "layout", string(m.Layout))
	addScalarField(node, "plain", strconv.FormatBool(m.Plain))
	addNode(node, "origin", flowInts(bounds.X, bounds.Y))

	if len(m.Rooms) > 0 {
		rooms := &yaml.Node{Kind: yaml.SequenceNode}
		for _, r := range m.Rooms {
			rooms.Content = append(rooms.Content, flowInts(r.X, r.Y, r.W, r.H))
		}
		addNode(node, "rooms", rooms)
	}

	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range renderRows(m, bounds) {
		rows.Content = append(rows.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.DoubleQuotedStyle,
			Value: row,
		})
	}
	addNode(node, "rows", rows)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func renderRows(m *mapgen.CompleteMap, bounds grid.Rect) []string {
	rows := make([]string, 0, bounds.H)
	line := make([]byte, bounds.W)
	for y := bounds.Y; y < bounds.MaxY(); y++ {
		for x := bounds.X; x < bounds.MaxX(); x++ {
			line[x-bounds.X] = glyphAt(m, grid.Pos{X: x, Y: y})
		}
		rows = append(rows, string(line))
	}
	return rows
}

func glyphAt(m *mapgen.CompleteMap, p grid.Pos) byte {
	if !m.Floor.Has(p) {
		return GlyphWall
	}
	c, ok := m.Labels[p]
	if !ok {
		return GlyphCorridor
	}
	return categoryGlyphs[c]
}

// ReadMapFile reads a map from a YAML file
func ReadMapFile(path string) (*mapgen.CompleteMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer f.Close()
	return ReadMap(f)
}

// ReadMap parses a map written by WriteMap
func ReadMap(r io.Reader) (*mapgen.CompleteMap, error) {
	var doc MapYAML
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	floor := grid.NewFloorSet()
	labels := make(map[grid.Pos]wfc.Category)
	for dy, row := range doc.Rows {
		for dx := 0; dx < len(row); dx++ {
			p := grid.Pos{X: doc.Origin[0] + dx, Y: doc.Origin[1] + dy}
			switch g := row[dx]; g {
			case GlyphWall:
			case GlyphCorridor:
				floor.Add(p)
			default:
				c, ok := categoryForGlyph(g)
				if !ok {
					return nil, fmt.Errorf("%w: unknown glyph %q at row %d", ErrInvalidMap, g, dy)
				}
				floor.Add(p)
				labels[p] = c
			}
		}
	}

	m := mapgen.Assemble(floor, labels)
	m.Width, m.Height = doc.Width, doc.Height
	m.Seed = doc.Seed
	m.Layout = mapgen.Layout(doc.Layout)
	m.Plain = doc.Plain
	for _, r := range doc.Rooms {
		m.Rooms = append(m.Rooms, grid.NewRect(r[0], r[1], r[2], r[3]))
	}
	return m, nil
}

func categoryForGlyph(g byte) (wfc.Category, bool) {
	for c, glyph := range categoryGlyphs {
		if glyph == g {
			return c, true
		}
	}
	return "", false
}

func addScalarField(node *yaml.Node, key, value string) {
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value},
	)
}

func addIntField(node *yaml.Node, key string, value int) {
	addScalarField(node, key, strconv.Itoa(value))
}

func addNode(node *yaml.Node, key string, value *yaml.Node) {
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

// flowInts returns an inline sequence such as [1, 2]
func flowInts(values ...int) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.Itoa(v)})
	}
	return seq
}
