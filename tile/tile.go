/*
Package tile implements extraction, palettizing, deduplication and bitplane
encoding of SNES tiles.

Tiles are held in a Set and addressed by their position. Deduplication never
removes a tile; a tile that can be drawn using another tile, optionally
mirrored, becomes an alias of it and drops its own pixel data. Only real tiles
are written to the bitplane stream.
*/
package tile

import (
	"github.com/bodgit/gracon/color"
	"github.com/pkg/errors"
)

// None marks a tile that does not reference another tile.
const None = -1

var (
	// ErrReferenceCycle is returned when following tile references does
	// not terminate.
	ErrReferenceCycle = errors.New("tile: reference cycle")
	// ErrBadReference is returned for a reference outside the set.
	ErrBadReference = errors.New("tile: reference out of range")
)

// Tile is a block of pixels cut from one frame.
type Tile struct {
	ID    int
	Frame int
	X, Y  int

	Width, Height int
	// Multiplier is the number of base tiles along each side of a big
	// tile. Big tiles store their base tiles one after another so Height
	// is the base tile height times Multiplier squared.
	Multiplier int

	// Pixels is row-major. After palettizing it holds the palette colors
	// rather than the source colors.
	Pixels  []color.Color
	Indices []uint8
	Hash    uint32

	Palette int

	Ref              int
	XMirror, YMirror bool

	OutID int
}

func newTile(frame, x, y, width, height int, pixels []color.Color) *Tile {
	return &Tile{
		Frame:      frame,
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		Multiplier: 1,
		Pixels:     pixels,
		Palette:    None,
		Ref:        None,
		OutID:      None,
	}
}

// Real returns true if the tile is not an alias.
func (t *Tile) Real() bool {
	return t.Ref == None
}

// Empty returns true for a real, palettized tile where every pixel uses
// index 0.
func (t *Tile) Empty() bool {
	if !t.Real() || t.Indices == nil {
		return false
	}
	for _, i := range t.Indices {
		if i != 0 {
			return false
		}
	}
	return true
}

// Rows returns the indices of the tile split into rows.
func (t *Tile) Rows() [][]uint8 {
	rows := make([][]uint8, 0, t.Height)
	for y := 0; y < len(t.Indices); y += t.Width {
		rows = append(rows, t.Indices[y:y+t.Width])
	}
	return rows
}

func (t *Tile) alias(ref *Tile, x, y bool) {
	t.Ref = ref.ID
	t.XMirror = x
	t.YMirror = y
	t.Pixels = nil
	t.Indices = nil
}

func mirror[T any](src []T, width, height int, x, y bool) []T {
	if !x && !y {
		return src
	}
	dst := make([]T, len(src))
	for row := 0; row < height; row++ {
		sy := row
		if y {
			sy = height - 1 - row
		}
		for col := 0; col < width; col++ {
			sx := col
			if x {
				sx = width - 1 - col
			}
			dst[row*width+col] = src[sy*width+sx]
		}
	}
	return dst
}

// MirrorPixels returns the pixels of the tile flipped horizontally and/or
// vertically.
func (t *Tile) MirrorPixels(x, y bool) []color.Color {
	return mirror(t.Pixels, t.Width, t.Height, x, y)
}

// MirrorIndices returns the indices of the tile flipped horizontally and/or
// vertically.
func (t *Tile) MirrorIndices(x, y bool) []uint8 {
	return mirror(t.Indices, t.Width, t.Height, x, y)
}

// Set is an ordered collection of tiles where each tile ID is its position.
type Set struct {
	Tiles []*Tile
}

// NewSet returns a Set containing every tile from each list in order. Tile
// IDs are renumbered to match their new position.
func NewSet(lists ...[]*Tile) *Set {
	s := new(Set)
	for _, l := range lists {
		for _, t := range l {
			t.ID = len(s.Tiles)
			s.Tiles = append(s.Tiles, t)
		}
	}
	return s
}

// Len returns the number of tiles, including aliases.
func (s *Set) Len() int {
	return len(s.Tiles)
}

// Clone returns a copy of s that can be deduplicated without changing s.
func (s *Set) Clone() *Set {
	c := &Set{
		Tiles: make([]*Tile, len(s.Tiles)),
	}
	for i, t := range s.Tiles {
		dup := *t
		c.Tiles[i] = &dup
	}
	return c
}

// Resolve follows references from the tile at position id to the real
// tile. The returned mirror flags are the composition of every reference
// followed.
func (s *Set) Resolve(id int) (*Tile, bool, bool, error) {
	var x, y bool
	for hops := 0; hops <= len(s.Tiles); hops++ {
		if id < 0 || id >= len(s.Tiles) {
			return nil, false, false, errors.Wrapf(ErrBadReference, "tile %d", id)
		}
		t := s.Tiles[id]
		if t.Real() {
			return t, x, y, nil
		}
		x = x != t.XMirror
		y = y != t.YMirror
		id = t.Ref
	}
	return nil, false, false, errors.Wrapf(ErrReferenceCycle, "tile %d", id)
}

// Real returns the tiles that are not aliases, in order.
func (s *Set) Real() []*Tile {
	out := make([]*Tile, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		if t.Real() {
			out = append(out, t)
		}
	}
	return out
}

// AssignOutIDs numbers the real tiles densely from zero and returns how many
// there are.
func (s *Set) AssignOutIDs() int {
	n := 0
	for _, t := range s.Tiles {
		if t.Real() {
			t.OutID = n
			n++
		} else {
			t.OutID = None
		}
	}
	return n
}

// LocalPalettes returns the distinct colors of every real tile, in the order
// they are first seen.
func (s *Set) LocalPalettes() [][]color.Color {
	palettes := make([][]color.Color, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		if !t.Real() {
			continue
		}
		seen := make(map[color.Color]struct{})
		colors := make([]color.Color, 0)
		for _, c := range t.Pixels {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			colors = append(colors, c)
		}
		palettes = append(palettes, colors)
	}
	return palettes
}
