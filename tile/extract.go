package tile

import (
	stdimage "image"

	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/bodgit/gracon/image"
)

// minOpaque is the number of opaque pixels a sprite tile must exceed to be
// kept.
const minOpaque = 2

// mod returns the non-negative remainder of a / b
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

type extractor struct {
	m           *image.Image
	transparent color.Color
	width       int
	height      int
}

func (e *extractor) opaque(x, y int) bool {
	c, ok := e.m.Pixel(x, y)
	return ok && c != e.transparent
}

func (e *extractor) pixels(x, y int) []color.Color {
	pixels := make([]color.Color, 0, e.width*e.height)
	for py := y; py < y+e.height; py++ {
		for px := x; px < x+e.width; px++ {
			c, ok := e.m.Pixel(px, py)
			if !ok {
				c = e.transparent
			}
			pixels = append(pixels, c)
		}
	}
	return pixels
}

// lineFilled returns true if scanline y has any opaque pixel
func (e *extractor) lineFilled(y int) bool {
	for x := 0; x < e.m.Width; x++ {
		if e.opaque(x, y) {
			return true
		}
	}
	return false
}

// columnFilled returns true if the tile high column at x, y has any opaque
// pixel
func (e *extractor) columnFilled(x, y int) bool {
	for py := y; py < y+e.height; py++ {
		if e.opaque(x, py) {
			return true
		}
	}
	return false
}

func (e *extractor) countOpaque(x, y int) int {
	n := 0
	for py := y; py < y+e.height; py++ {
		for px := x; px < x+e.width; px++ {
			if e.opaque(px, py) {
				n++
			}
		}
	}
	return n
}

func (e *extractor) bigFilled(x, y int, cfg config.Config) bool {
	misses := cfg.Multiplier * cfg.Multiplier
	for j := 0; j < cfg.Multiplier; j++ {
		for i := 0; i < cfg.Multiplier; i++ {
			if e.countOpaque(x+i*e.width, y+j*e.height) > minOpaque {
				misses--
			}
		}
	}
	return misses <= cfg.BigTileThreshold
}

// Background cuts m into a grid of tiles in raster order. The image is
// expected to be padded to a multiple of the tile size.
func Background(m *image.Image, frame int, cfg config.Config) []*Tile {
	e := extractor{m, cfg.Transparent, cfg.TileWidth, cfg.TileHeight}

	tiles := make([]*Tile, 0, (m.Width/e.width)*(m.Height/e.height))
	for y := 0; y < m.Height; y += e.height {
		for x := 0; x < m.Width; x += e.width {
			t := newTile(frame, x, y, e.width, e.height, e.pixels(x, y))
			t.ID = len(tiles)
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// Sprite returns the tiles of m that contain opaque pixels. Empty scanlines
// and columns are skipped so tiles start at the first opaque pixel and each
// tile is shifted left until its right edge holds an opaque pixel. If the
// multiplier is greater than one, adjacent tiles are then grouped into big
// tiles which are returned separately; tiles used by a big tile are not
// returned as normal tiles.
func Sprite(m *image.Image, frame int, cfg config.Config) ([]*Tile, []*Tile) {
	e := extractor{m, cfg.Transparent, cfg.TileWidth, cfg.TileHeight}
	big := cfg.Multiplier > 1

	var tiles []*Tile
	bigY, bigLeft := 0, 0
	for y := 0; y < m.Height; {
		if !e.lineFilled(y) {
			y++
			continue
		}

		for x := 0; x < m.Width; {
			if !e.columnFilled(x, y) {
				x++
				continue
			}

			// Keep tiles inside a big tile aligned to its grid
			if big {
				switch {
				case y < bigY:
					x -= mod(x-bigLeft, e.width)
				case e.bigFilled(x, y, cfg):
					bigY = y + cfg.Multiplier*e.height
					bigLeft = x
				default:
					bigY = 0
				}
			}

			if e.countOpaque(x, y) > minOpaque {
				if y >= bigY {
					back := x + e.width
					for back > x && !e.columnFilled(back, y) {
						back--
					}
					if diff := mod(x+e.width-back, e.width); diff != 0 {
						x -= diff - 1
					}
				}
				if x > m.Width-e.width {
					x = m.Width - e.width
				}
				if x < 0 {
					x = 0
				}

				t := newTile(frame, x, y, e.width, e.height, e.pixels(x, y))
				t.ID = len(tiles)
				tiles = append(tiles, t)
			}

			x += e.width
		}

		y += e.height
	}

	if !big {
		return tiles, nil
	}

	return groupBig(tiles, frame, cfg)
}

func groupBig(tiles []*Tile, frame int, cfg config.Config) ([]*Tile, []*Tile) {
	w, h, n := cfg.TileWidth, cfg.TileHeight, cfg.Multiplier

	used := make(map[*Tile]struct{})
	find := func(x, y int) *Tile {
		for _, t := range tiles {
			if _, ok := used[t]; !ok && t.X == x && t.Y == y {
				return t
			}
		}
		return nil
	}

	var regions []stdimage.Rectangle
	var big []*Tile

	for _, t := range tiles {
		if len(big) >= cfg.MaxBigTiles {
			break
		}

		region := stdimage.Rect(t.X, t.Y, t.X+n*w, t.Y+n*h)
		overlaps := false
		for _, r := range regions {
			if r.Overlaps(region) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		subs := make([]*Tile, 0, n*n)
		misses := 0
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				sub := find(t.X+i*w, t.Y+j*h)
				if sub == nil {
					misses++
				}
				subs = append(subs, sub)
			}
		}
		if misses > cfg.BigTileThreshold {
			continue
		}

		pixels := make([]color.Color, 0, n*n*w*h)
		for _, sub := range subs {
			if sub == nil {
				for i := 0; i < w*h; i++ {
					pixels = append(pixels, cfg.Transparent)
				}
				continue
			}
			pixels = append(pixels, sub.Pixels...)
			used[sub] = struct{}{}
		}

		b := newTile(frame, t.X, t.Y, w, h*n*n, pixels)
		b.Multiplier = n
		b.ID = len(big)
		big = append(big, b)
		regions = append(regions, region)
	}

	normal := make([]*Tile, 0, len(tiles))
	for _, t := range tiles {
		if _, ok := used[t]; ok {
			continue
		}
		t.ID = len(normal)
		normal = append(normal, t)
	}

	return normal, big
}

// Rechunk returns the rows of the big tiles in tiles split into four runs;
// the first quarter of every tile, followed by the second quarter of every
// tile and so on. Each run can then be transferred in one go.
func Rechunk(tiles []*Tile) [][]uint8 {
	var quarters [4][][]uint8
	for _, t := range tiles {
		rows := t.Rows()
		n := len(rows) / 4
		for q := 0; q < 4; q++ {
			quarters[q] = append(quarters[q], rows[q*n:(q+1)*n]...)
		}
	}

	out := make([][]uint8, 0)
	for _, q := range quarters {
		out = append(out, q...)
	}
	return out
}
