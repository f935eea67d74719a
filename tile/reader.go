package tile

import (
	"io"

	"github.com/pkg/errors"
)

// Decode reads bitplane cells from r until it is exhausted and returns the
// 64 indices of every cell in row-major order. It is the inverse of Encode
// for 8 by 8 tiles.
func Decode(r io.Reader, bpp int) ([][]uint8, error) {
	size := bpp * cellSize
	buf := make([]byte, size)

	var cells [][]uint8
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				return cells, nil
			}
			return nil, errors.Wrap(err, "tile: short cell")
		}

		cell := make([]uint8, cellSize*cellSize)
		for p := 0; p < bpp; p++ {
			for y := 0; y < cellSize; y++ {
				// Planes are stored in interleaved pairs
				off := (p&^1)*cellSize + y*2 + p&1
				if p == bpp-1 && p&1 == 0 {
					off = p*cellSize + y
				}
				for x := 0; x < cellSize; x++ {
					if buf[off]&(0x80>>uint(x)) != 0 {
						cell[y*cellSize+x] |= 1 << uint(p)
					}
				}
			}
		}
		cells = append(cells, cell)
	}
}
