package tilemap

import (
	"encoding/binary"
	"io"

	"github.com/bodgit/gracon/palette"
	"github.com/bodgit/gracon/tile"
	"github.com/pkg/errors"
)

// Record is one sprite placement.
type Record struct {
	X, Y uint8
	Word uint16
}

// Sprite returns one record per tile of frame. Each tile must belong to
// tiles. With mirrorX or mirrorY set the records describe the frame flipped
// within a width by height area; positions are reflected and the mirror
// flags toggled.
func Sprite(frame []*tile.Tile, tiles *tile.Set, palettes *palette.Set, width, height int, mirrorX, mirrorY bool) ([]Record, error) {
	records := make([]Record, 0, len(frame))
	for _, t := range frame {
		p, err := resolve(t, tiles, palettes)
		if err != nil {
			return nil, err
		}
		p.x = p.x != mirrorX
		p.y = p.y != mirrorY

		w, err := p.word(maxSpriteTile, 9)
		if err != nil {
			return nil, err
		}

		x, y := t.X, t.Y
		if mirrorX {
			x = width - x - t.Width*t.Multiplier
			if x < 0 {
				x = 0
			}
		}
		if mirrorY {
			y = height - y - t.Height/t.Multiplier
			if y < 0 {
				y = 0
			}
		}

		if x > maxPosition || y > maxPosition {
			return nil, errors.Wrapf(ErrOutOfRange, "sprite at %d,%d, maximum is %d,%d", x, y, maxPosition, maxPosition)
		}

		records = append(records, Record{uint8(x), uint8(y), w})
	}
	return records, nil
}

// WriteSprite writes the records returned by Sprite to w.
func WriteSprite(w io.Writer, frame []*tile.Tile, tiles *tile.Set, palettes *palette.Set, width, height int, mirrorX, mirrorY bool) error {
	records, err := Sprite(frame, tiles, palettes, width, height, mirrorX, mirrorY)
	if err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, records)
}
