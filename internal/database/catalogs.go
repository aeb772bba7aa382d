package database

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

var ErrCatalogNotFound = errors.New("catalog not found")

const (
	insertCatalogSQL = "INSERT INTO catalogs (fingerprint, tile_size, tolerance, tile_count) VALUES (?, ?, ?, ?)"
	insertTileSQL    = "INSERT INTO catalog_tiles (catalog_id, tile_index, image, neighbors) VALUES (?, ?, ?, ?)"
	selectCatalogSQL = "SELECT id, tile_size, tolerance, tile_count FROM catalogs WHERE fingerprint = ?"
	selectTilesSQL   = "SELECT tile_index, image, neighbors FROM catalog_tiles WHERE catalog_id = ? ORDER BY tile_index"
)

// CatalogInfo summarizes a stored catalog.
type CatalogInfo struct {
	ID          int64
	Fingerprint string
	TileSize    int
	Tolerance   float64
	TileCount   int
}

// SaveCatalog stores a catalog and its tiles. A catalog whose fingerprint is
// already stored is left untouched and its existing id is returned.
func (d *Database) SaveCatalog(c *wfc.Catalog) (int64, error) {
	if c.Source == "" {
		return 0, fmt.Errorf("catalog has no fingerprint")
	}

	if info, err := d.CatalogInfo(c.Source); err == nil {
		return info.ID, nil
	} else if !errors.Is(err, ErrCatalogNotFound) {
		return 0, err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := d.insert(tx,
		insertCatalogSQL, c.Source, c.TileSize, c.Tolerance, c.Len())
	if err != nil {
		if d.dialect.isDuplicate(err) {
			// Stored concurrently by another writer
			tx.Rollback()
			info, lookupErr := d.CatalogInfo(c.Source)
			if lookupErr != nil {
				return 0, lookupErr
			}
			return info.ID, nil
		}
		return 0, fmt.Errorf("failed to insert catalog: %w", err)
	}

	stmt := d.dialect.rebind(insertTileSQL)
	for _, t := range c.Tiles {
		img, err := encodeTileImage(t.Image)
		if err != nil {
			return 0, fmt.Errorf("tile %d: %w", t.Index, err)
		}
		neighbors, err := encodeNeighbors(t.Neighbors)
		if err != nil {
			return 0, fmt.Errorf("tile %d: %w", t.Index, err)
		}
		if _, err := tx.Exec(stmt, id, t.Index, img, neighbors); err != nil {
			return 0, fmt.Errorf("failed to insert tile %d: %w", t.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catalog: %w", err)
	}
	return id, nil
}

// CatalogInfo returns the summary row of the catalog with the given fingerprint.
func (d *Database) CatalogInfo(fingerprint string) (*CatalogInfo, error) {
	info := &CatalogInfo{Fingerprint: fingerprint}
	err := d.db.QueryRow(
		d.dialect.rebind(selectCatalogSQL),
		fingerprint,
	).Scan(&info.ID, &info.TileSize, &info.Tolerance, &info.TileCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCatalogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	return info, nil
}

// LoadCatalog rebuilds the catalog with the given fingerprint.
func (d *Database) LoadCatalog(fingerprint string) (*wfc.Catalog, error) {
	info, err := d.CatalogInfo(fingerprint)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(
		d.dialect.rebind(selectTilesSQL),
		info.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiles: %w", err)
	}
	defer rows.Close()

	catalog := &wfc.Catalog{
		TileSize:  info.TileSize,
		Tolerance: info.Tolerance,
		Source:    info.Fingerprint,
	}
	for rows.Next() {
		var index int
		var imgData []byte
		var neighbors string
		if err := rows.Scan(&index, &imgData, &neighbors); err != nil {
			return nil, fmt.Errorf("failed to scan tile: %w", err)
		}

		img, err := decodeTileImage(imgData)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", index, err)
		}
		tile := wfc.NewTile(index, info.TileSize, img)
		if err := decodeNeighbors(neighbors, tile.Neighbors); err != nil {
			return nil, fmt.Errorf("tile %d: %w", index, err)
		}
		catalog.Tiles = append(catalog.Tiles, tile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tiles: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// ListCatalogs returns every stored catalog, oldest first.
func (d *Database) ListCatalogs() ([]CatalogInfo, error) {
	rows, err := d.db.Query("SELECT id, fingerprint, tile_size, tolerance, tile_count FROM catalogs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query catalogs: %w", err)
	}
	defer rows.Close()

	var out []CatalogInfo
	for rows.Next() {
		var info CatalogInfo
		if err := rows.Scan(&info.ID, &info.Fingerprint, &info.TileSize, &info.Tolerance, &info.TileCount); err != nil {
			return nil, fmt.Errorf("failed to scan catalog: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func encodeTileImage(img *image.NRGBA) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("tile has no image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode tile image: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeTileImage always returns NRGBA; the PNG encoder drops alpha from
// opaque images, which then decode as RGBA.
func decodeTileImage(data []byte) (*image.NRGBA, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile image: %w", err)
	}
	if n, ok := src.(*image.NRGBA); ok {
		return n, nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

func encodeNeighbors(neighbors map[wfc.Direction][]int) (string, error) {
	byName := make(map[string][]int, len(neighbors))
	for dir, ns := range neighbors {
		byName[dir.String()] = ns
	}
	data, err := json.Marshal(byName)
	if err != nil {
		return "", fmt.Errorf("failed to encode neighbors: %w", err)
	}
	return string(data), nil
}

func decodeNeighbors(data string, into map[wfc.Direction][]int) error {
	var byName map[string][]int
	if err := json.Unmarshal([]byte(data), &byName); err != nil {
		return fmt.Errorf("failed to decode neighbors: %w", err)
	}
	for name, ns := range byName {
		dir, err := wfc.ParseDirection(name)
		if err != nil {
			return err
		}
		into[dir] = ns
	}
	return nil
}

// TrainCatalog returns the stored catalog learned from img, learning and
// storing it on first use. cached reports whether it was already stored.
func (d *Database) TrainCatalog(img image.Image, tileSize int, tolerance float64) (*wfc.Catalog, bool, error) {
	fingerprint := wfc.Fingerprint(img, tileSize, tolerance)

	c, err := d.LoadCatalog(fingerprint)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, ErrCatalogNotFound) {
		return nil, false, err
	}

	c, err = wfc.NewCatalog(img, tileSize, tolerance)
	if err != nil {
		return nil, false, err
	}
	if _, err := d.SaveCatalog(c); err != nil {
		return nil, false, err
	}
	return c, false, nil
}
