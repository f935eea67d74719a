package palette

import (
	"encoding/binary"
	"io"

	"github.com/bodgit/gracon/color"
	"github.com/pkg/errors"
)

// Decode reads a palette stream as written by Encode. The returned Set has
// no aliases and every palette keeps its padding.
func Decode(r io.Reader, bpp int) (*Set, error) {
	n := 1 << uint(bpp)
	s := new(Set)

	var tmp [2]byte
	for {
		colors := make([]color.Color, n)
		for i := range colors {
			if _, err := io.ReadFull(r, tmp[:]); err != nil {
				if i == 0 && err == io.EOF {
					return s, nil
				}
				return nil, errors.Wrap(err, "palette: short palette")
			}
			colors[i] = color.FromSNES(binary.LittleEndian.Uint16(tmp[:]))
		}
		s.Palettes = append(s.Palettes, &Palette{
			ID:     len(s.Palettes),
			Ref:    None,
			Colors: colors,
			OutID:  len(s.Palettes),
		})
	}
}
