// Package render draws generated maps as text for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

// Cell glyphs
const (
	GlyphWall     = '#'
	GlyphFloor    = '.'
	GlyphHazard   = '~'
	GlyphEnemy    = 'E'
	GlyphPickup   = '$'
	GlyphPlayer   = '@'
	GlyphCorridor = ','
)

// Renderer writes a map one row per line. Colour is optional so the same
// output can go to files and pipes.
type Renderer struct {
	Color bool
	// MaxWidth clips rows to this many cells. 0 draws full rows.
	MaxWidth int

	colorWall     color.Style
	colorFloor    color.Style
	colorCorridor color.Style
	colorHazard   color.Style
	colorEnemy    color.Style
	colorPickup   color.Style
	colorPlayer   color.Style
	colorSubtle   color.Style
}

// New creates a renderer
func New(useColor bool) *Renderer {
	return &Renderer{
		Color:         useColor,
		colorWall:     color.Style{color.FgGray},
		colorFloor:    color.Style{color.FgWhite},
		colorCorridor: color.Style{color.FgGray, color.OpBold},
		colorHazard:   color.Style{color.FgRed},
		colorEnemy:    color.Style{color.FgRed, color.OpBold},
		colorPickup:   color.Style{color.FgYellow, color.OpBold},
		colorPlayer:   color.Style{color.FgGreen, color.BgBlack, color.OpBold},
		colorSubtle:   color.Style{color.FgGray, color.OpBold},
	}
}

// Glyph returns the glyph and style of one cell
func (r *Renderer) Glyph(m *mapgen.CompleteMap, p grid.Pos) (rune, color.Style) {
	c, ok := m.CategoryAt(p)
	if !ok {
		return GlyphWall, r.colorWall
	}
	if _, labelled := m.Labels[p]; !labelled {
		return GlyphCorridor, r.colorCorridor
	}
	switch c {
	case wfc.CategoryHazard:
		return GlyphHazard, r.colorHazard
	case wfc.CategoryEnemySpawn:
		return GlyphEnemy, r.colorEnemy
	case wfc.CategoryCollectible:
		return GlyphPickup, r.colorPickup
	case wfc.CategoryPlayerSpawn:
		return GlyphPlayer, r.colorPlayer
	default:
		return GlyphFloor, r.colorFloor
	}
}

// Lines returns the rendered rows of the map
func (r *Renderer) Lines(m *mapgen.CompleteMap) []string {
	b := m.Bounds()
	width := b.W
	if r.MaxWidth > 0 && width > r.MaxWidth {
		width = r.MaxWidth
	}

	lines := make([]string, 0, b.H)
	var sb strings.Builder
	for y := b.Y; y < b.MaxY(); y++ {
		sb.Reset()
		// Runs of one style are coloured together to keep escape codes down
		var run []rune
		var runStyle color.Style
		flush := func() {
			if len(run) > 0 {
				sb.WriteString(r.paint(runStyle, string(run)))
				run = run[:0]
			}
		}
		for x := b.X; x < b.X+width; x++ {
			g, style := r.Glyph(m, grid.Pos{X: x, Y: y})
			if len(run) > 0 && !sameStyle(style, runStyle) {
				flush()
			}
			runStyle = style
			run = append(run, g)
		}
		flush()
		lines = append(lines, sb.String())
	}
	return lines
}

// Render writes the map followed by a legend
func (r *Renderer) Render(w io.Writer, m *mapgen.CompleteMap) error {
	for _, line := range r.Lines(m) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, r.Legend(m))
	return err
}

// Legend summarises the glyphs and how many cells use each
func (r *Renderer) Legend(m *mapgen.CompleteMap) string {
	counts := m.Counts()
	parts := []string{
		fmt.Sprintf("%s player %d", r.paint(r.colorPlayer, string(GlyphPlayer)), counts[wfc.CategoryPlayerSpawn]),
		fmt.Sprintf("%s enemy %d", r.paint(r.colorEnemy, string(GlyphEnemy)), counts[wfc.CategoryEnemySpawn]),
		fmt.Sprintf("%s pickup %d", r.paint(r.colorPickup, string(GlyphPickup)), counts[wfc.CategoryCollectible]),
		fmt.Sprintf("%s hazard %d", r.paint(r.colorHazard, string(GlyphHazard)), counts[wfc.CategoryHazard]),
	}
	summary := fmt.Sprintf("seed %d, %s layout, %d floor cells", m.Seed, m.Layout, m.Floor.Len())
	if m.Plain {
		summary += ", plain"
	}
	return strings.Join(parts, "  ") + "\n" + r.paint(r.colorSubtle, summary)
}

func (r *Renderer) paint(style color.Style, s string) string {
	if !r.Color {
		return s
	}
	return style.Sprint(s)
}

func sameStyle(a, b color.Style) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
