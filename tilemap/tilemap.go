/*
Package tilemap writes the tilemaps that place tiles on screen.

A background tilemap holds one little-endian word per tile:

	vhopppcc cccccccc

where v and h are the vertical and horizontal mirror flags, ppp is the
palette and c is the tile. A sprite tilemap holds a four byte record per
sprite; the X and Y position followed by the little-endian word

	vhoopppc cccccccc

where oo is the priority, always zero.
*/
package tilemap

import (
	"github.com/bodgit/gracon/palette"
	"github.com/bodgit/gracon/tile"
	"github.com/pkg/errors"
)

const (
	screenSize  = 32
	screenWords = screenSize * screenSize

	maxPalette    = 0x7
	maxBgTile     = 0x3ff
	maxSpriteTile = 0x1ff
	maxPosition   = 0xff
)

var (
	// ErrOutOfRange is returned when a tile or palette number, or a sprite
	// position, does not fit in its field.
	ErrOutOfRange = errors.New("tilemap: value out of range")
	// ErrTooLarge is returned for a partitioned map bigger than four
	// screens.
	ErrTooLarge = errors.New("tilemap: map too large")
)

// placement is a tile resolved to what is written in the tilemap
type placement struct {
	tile    int
	palette int
	x, y    bool
}

func resolve(t *tile.Tile, tiles *tile.Set, palettes *palette.Set) (placement, error) {
	r, x, y, err := tiles.Resolve(t.ID)
	if err != nil {
		return placement{}, err
	}
	p, err := palettes.Resolve(t.Palette)
	if err != nil {
		return placement{}, err
	}
	return placement{r.OutID, p.OutID, x, y}, nil
}

func (p placement) word(maxTile int, palShift uint) (uint16, error) {
	if p.tile < 0 || p.tile > maxTile {
		return 0, errors.Wrapf(ErrOutOfRange, "tile %d, maximum is %d", p.tile, maxTile)
	}
	if p.palette < 0 || p.palette > maxPalette {
		return 0, errors.Wrapf(ErrOutOfRange, "palette %d, maximum is %d", p.palette, maxPalette)
	}
	w := uint16(p.palette)<<palShift | uint16(p.tile)
	if p.x {
		w |= 1 << 14
	}
	if p.y {
		w |= 1 << 15
	}
	return w, nil
}

// screenOffset returns the word offset of the screen holding the tile at
// column x and row y
func screenOffset(x, y, cols, rows int) int {
	if cols > screenSize && rows > screenSize {
		offset := 0
		if x >= screenSize {
			offset += screenWords
		}
		if y >= screenSize {
			offset += 2 * screenWords
		}
		return offset
	}
	if x >= screenSize || y >= screenSize {
		return screenWords
	}
	return 0
}
