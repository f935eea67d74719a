package tilemap

import (
	"encoding/binary"
	"io"

	"github.com/bodgit/gracon/palette"
	"github.com/bodgit/gracon/tile"
	"github.com/pkg/errors"
)

// Background returns the tilemap of a frame made of cols by rows tiles. Each
// tile of frame must belong to tiles.
//
// Unless partition is set there is one word per tile in order. Otherwise
// the map is split into 32 by 32 tile screens, up to two in each direction,
// and unused entries point at the first empty tile.
func Background(frame []*tile.Tile, tiles *tile.Set, palettes *palette.Set, cols, rows int, partition bool) ([]uint16, error) {
	entry := func(t *tile.Tile) (uint16, error) {
		p, err := resolve(t, tiles, palettes)
		if err != nil {
			return 0, err
		}
		return p.word(maxBgTile, 10)
	}

	if !partition {
		words := make([]uint16, 0, len(frame))
		for _, t := range frame {
			w, err := entry(t)
			if err != nil {
				return nil, err
			}
			words = append(words, w)
		}
		return words, nil
	}

	if cols > 2*screenSize || rows > 2*screenSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d by %d tiles, maximum is %d by %d", cols, rows, 2*screenSize, 2*screenSize)
	}

	screens := 1
	if cols > screenSize {
		screens *= 2
	}
	if rows > screenSize {
		screens *= 2
	}

	var fill uint16
	for _, t := range tiles.Tiles {
		if t.Empty() {
			w, err := entry(t)
			if err != nil {
				return nil, err
			}
			fill = w
			break
		}
	}

	words := make([]uint16, screens*screenWords)
	for i := range words {
		words[i] = fill
	}

	for _, t := range frame {
		w, err := entry(t)
		if err != nil {
			return nil, err
		}
		x, y := t.X/t.Width, t.Y/t.Height
		words[screenOffset(x, y, cols, rows)+(y%screenSize)*screenSize+x%screenSize] = w
	}

	return words, nil
}

// WriteBackground writes the tilemap returned by Background to w.
func WriteBackground(w io.Writer, frame []*tile.Tile, tiles *tile.Set, palettes *palette.Set, cols, rows int, partition bool) error {
	words, err := Background(frame, tiles, palettes, cols, rows, partition)
	if err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, words)
}
