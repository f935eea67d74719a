package tile

import (
	"io"

	"github.com/bodgit/gracon/config"
)

// cellSize is the width and height of the hardware tile the bitplanes
// describe; larger tiles are split into several cells.
const cellSize = 8

type encoder struct {
	w          io.Writer
	tileWidth  int
	tileHeight int
	bpp        int
}

// slices splits every row into cell wide slices
func slices(rows [][]uint8) [][]uint8 {
	out := make([][]uint8, 0, len(rows))
	for _, r := range rows {
		for i := 0; i < len(r); i += cellSize {
			end := i + cellSize
			if end > len(r) {
				end = len(r)
			}
			out = append(out, r[i:end])
		}
	}
	return out
}

// source returns the slice used for row y of cell i. Wide and tall tiles
// are addressed as separate cells so the slice index is rotated to pick
// the right half of the tile.
func (e *encoder) source(i, y int) int {
	s := i*cellSize + y
	if e.tileWidth == 16 {
		s = (s & 0xfff0) | ((s & 0x7) << 1) | ((s & 0x8) >> 3)
	}
	if e.tileHeight == 16 {
		s = (s & 0xff0f) | ((s & 0x70) << 1) | ((s & 0x80) >> 3)
	}
	return s
}

func (e *encoder) encode(rows [][]uint8) error {
	sl := slices(rows)

	cells := len(sl) / cellSize
	if e.tileHeight == 16 && cells&0x7f != 0 {
		cells += 0x80
	}

	planes := make([][cellSize]byte, e.bpp)
	buf := make([]byte, 0, e.bpp*cellSize)

	for i := 0; i < cells; i++ {
		for p := range planes {
			planes[p] = [cellSize]byte{}
		}

		for y := 0; y < cellSize; y++ {
			s := e.source(i, y)
			if s >= len(sl) {
				continue
			}
			for x, v := range sl[s] {
				for p := 0; p < e.bpp; p++ {
					if v>>uint(p)&1 != 0 {
						planes[p][y] |= 0x80 >> uint(x)
					}
				}
			}
		}

		buf = buf[:0]
		for p := 0; p < e.bpp; p += 2 {
			for y := 0; y < cellSize; y++ {
				buf = append(buf, planes[p][y])
				if p+1 < e.bpp {
					buf = append(buf, planes[p+1][y])
				}
			}
		}

		if _, err := e.w.Write(buf); err != nil {
			return err
		}
	}

	return nil
}

func rowsOf(tiles []*Tile) [][]uint8 {
	var rows [][]uint8
	for _, t := range tiles {
		rows = append(rows, t.Rows()...)
	}
	return rows
}

// Encode writes the real tiles of s to w as bitplanes, in order.
func Encode(w io.Writer, s *Set, cfg config.Config) error {
	e := encoder{w, cfg.TileWidth, cfg.TileHeight, cfg.BPP}
	return e.encode(rowsOf(s.Real()))
}

// EncodeBig writes the big tiles of s to w as bitplanes after reordering
// their rows with Rechunk.
func EncodeBig(w io.Writer, s *Set, cfg config.Config) error {
	e := encoder{w, cfg.TileWidth, cfg.TileHeight, cfg.BPP}
	return e.encode(Rechunk(s.Real()))
}
