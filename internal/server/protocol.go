package server

import (
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
)

// Request asks for one map. Zero fields take the server's configured
// defaults; a missing seed is drawn from the clock.
type Request struct {
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	MinRoomSize   int    `json:"min_room_size,omitempty"`
	MaxRoomSize   int    `json:"max_room_size,omitempty"`
	Seed          *int64 `json:"seed,omitempty"`
	Layout        string `json:"layout,omitempty"`
	FallbackPlain bool   `json:"fallback_plain,omitempty"`
}

// Error codes sent to clients
const (
	CodeInvalidRequest   = "invalid_request"
	CodeTooLarge         = "too_large"
	CodeUnableToGenerate = "unable_to_generate"
	CodeUnavailable      = "unavailable"
)

// Response answers one Request
type Response struct {
	OK    bool        `json:"ok"`
	Code  string      `json:"code,omitempty"`
	Error string      `json:"error,omitempty"`
	ID    int64       `json:"id,omitempty"` // Stored map id, when a store is configured
	Map   *MapPayload `json:"map,omitempty"`
}

// MapPayload is a generated map on the wire
type MapPayload struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Seed   int64         `json:"seed"`
	Layout string        `json:"layout"`
	Plain  bool          `json:"plain"`
	Rooms  [][4]int      `json:"rooms"`
	Cells  []CellPayload `json:"cells"`
}

// CellPayload is one floor cell. C is the category code.
type CellPayload struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	C string `json:"c"`
}

func newMapPayload(m *mapgen.CompleteMap) *MapPayload {
	p := &MapPayload{
		Width:  m.Width,
		Height: m.Height,
		Seed:   m.Seed,
		Layout: string(m.Layout),
		Plain:  m.Plain,
		Rooms:  make([][4]int, 0, len(m.Rooms)),
	}
	for _, r := range m.Rooms {
		p.Rooms = append(p.Rooms, [4]int{r.X, r.Y, r.W, r.H})
	}
	cells := m.Cells()
	p.Cells = make([]CellPayload, len(cells))
	for i, c := range cells {
		p.Cells[i] = CellPayload{X: c.Pos.X, Y: c.Pos.Y, C: string(c.Category)}
	}
	return p
}

func errorResponse(code string, err error) *Response {
	return &Response{Code: code, Error: err.Error()}
}
