package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

var ErrMapNotFound = errors.New("map not found")

const (
	insertMapSQL = "INSERT INTO maps (catalog_fingerprint, width, height, seed, layout, plain, rooms, cells) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	selectMapSQL = "SELECT width, height, seed, layout, plain, rooms, cells FROM maps WHERE id = ?"
	countMapsSQL = "SELECT COUNT(*) FROM maps WHERE catalog_fingerprint = ?"
)

// storedCell is one floor cell in the cells column. Unlabelled floor has no
// category.
type storedCell struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	C string `json:"c,omitempty"`
}

type storedRoom struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// SaveMap stores a generated map and returns its id.
func (d *Database) SaveMap(m *mapgen.CompleteMap, catalogFingerprint string) (int64, error) {
	cells := make([]storedCell, 0, m.Floor.Len())
	for _, p := range m.Floor.Sorted() {
		cell := storedCell{X: p.X, Y: p.Y}
		if c, ok := m.Labels[p]; ok {
			cell.C = string(c)
		}
		cells = append(cells, cell)
	}
	rooms := make([]storedRoom, len(m.Rooms))
	for i, r := range m.Rooms {
		rooms[i] = storedRoom{r.X, r.Y, r.W, r.H}
	}

	cellData, err := json.Marshal(cells)
	if err != nil {
		return 0, fmt.Errorf("failed to encode cells: %w", err)
	}
	roomData, err := json.Marshal(rooms)
	if err != nil {
		return 0, fmt.Errorf("failed to encode rooms: %w", err)
	}

	plain := 0
	if m.Plain {
		plain = 1
	}

	id, err := d.insert(d.db,
		insertMapSQL, catalogFingerprint, m.Width, m.Height, m.Seed, string(m.Layout), plain, string(roomData), string(cellData))
	if err != nil {
		return 0, fmt.Errorf("failed to insert map: %w", err)
	}
	return id, nil
}

// LoadMap returns the stored map with the given id.
func (d *Database) LoadMap(id int64) (*mapgen.CompleteMap, error) {
	var (
		width, height, plain int
		seed                 int64
		layout               string
		roomData, cellData   string
	)
	err := d.db.QueryRow(
		d.dialect.rebind(selectMapSQL),
		id,
	).Scan(&width, &height, &seed, &layout, &plain, &roomData, &cellData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMapNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query map: %w", err)
	}

	var cells []storedCell
	if err := json.Unmarshal([]byte(cellData), &cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	var rooms []storedRoom
	if err := json.Unmarshal([]byte(roomData), &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	floor := grid.NewFloorSet()
	labels := make(map[grid.Pos]wfc.Category)
	for _, c := range cells {
		p := grid.Pos{X: c.X, Y: c.Y}
		floor.Add(p)
		if c.C != "" {
			labels[p] = wfc.ParseCategory(c.C)
		}
	}

	m := mapgen.Assemble(floor, labels)
	m.Width, m.Height = width, height
	m.Seed = seed
	m.Layout = mapgen.Layout(layout)
	m.Plain = plain != 0
	for _, r := range rooms {
		m.Rooms = append(m.Rooms, grid.NewRect(r.X, r.Y, r.W, r.H))
	}
	return m, nil
}

// MapCount returns how many maps were generated from a catalog.
func (d *Database) MapCount(catalogFingerprint string) (int, error) {
	var count int
	err := d.db.QueryRow(
		d.dialect.rebind(countMapsSQL),
		catalogFingerprint,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count maps: %w", err)
	}
	return count, nil
}
