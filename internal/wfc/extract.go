package wfc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"

	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultTileSize is the sub-tile edge length used by the sample images
const DefaultTileSize = 50

var ErrImageTooSmall = errors.New("wfc: sample image smaller than one tile window")

// ExtractTiles cuts every 3x3 sub-tile window out of img, stepping one
// sub-tile at a time. Tiles are returned row by row from the image's top-left
// corner and indexed in that order.
func ExtractTiles(img image.Image, tileSize int) ([]*Tile, error) {
	if tileSize < 1 {
		return nil, fmt.Errorf("wfc: tile size must be positive, got %d", tileSize)
	}
	window := 3 * tileSize
	b := img.Bounds()
	if b.Dx() < window || b.Dy() < window {
		return nil, fmt.Errorf("%w: %dx%d image, %dpx window", ErrImageTooSmall, b.Dx(), b.Dy(), window)
	}

	var tiles []*Tile
	for y := b.Min.Y; y+window <= b.Max.Y; y += tileSize {
		for x := b.Min.X; x+window <= b.Max.X; x += tileSize {
			patch := image.NewNRGBA(image.Rect(0, 0, window, window))
			draw.Draw(patch, patch.Bounds(), img, image.Pt(x, y), draw.Src)
			tiles = append(tiles, NewTile(len(tiles), tileSize, patch))
		}
	}
	return tiles, nil
}

// LoadImage decodes a sample image from disk. PNG, BMP and WebP are supported.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sample image %s: %w", path, err)
	}
	return img, nil
}

// Fingerprint returns a stable hash of the image's pixels and the extraction
// settings. It identifies a catalog in the store so a sample is only
// analysed once per tile size and tolerance.
func Fingerprint(img image.Image, tileSize int, tolerance float64) string {
	b := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%dx%d/%d/%g:", b.Dx(), b.Dy(), tileSize, tolerance)
	h.Write(rgba.Pix)
	return hex.EncodeToString(h.Sum(nil))
}

// NewCatalog extracts the tiles of img and learns their adjacency
func NewCatalog(img image.Image, tileSize int, tolerance float64) (*Catalog, error) {
	if tolerance <= 0 || tolerance > 1 {
		return nil, fmt.Errorf("wfc: tolerance must be in (0,1], got %v", tolerance)
	}
	tiles, err := ExtractTiles(img, tileSize)
	if err != nil {
		return nil, err
	}
	AnalyzeAdjacency(tiles, tolerance)

	return &Catalog{
		Tiles:     tiles,
		TileSize:  tileSize,
		Tolerance: tolerance,
		Source:    Fingerprint(img, tileSize, tolerance),
	}, nil
}
