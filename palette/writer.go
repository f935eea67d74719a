package palette

import (
	"encoding/binary"
	"io"

	"github.com/bodgit/gracon/color"
	"github.com/pkg/errors"
)

type encoder struct {
	w      io.Writer
	colors int
}

func (e *encoder) encode(s *Set) error {
	var tmp [2]byte
	for _, p := range s.Palettes {
		if !p.Real() {
			continue
		}
		if len(p.Colors) > e.colors {
			return errors.Errorf("palette: palette %d has %d colors, only %d allowed", p.ID, len(p.Colors), e.colors)
		}
		for i := 0; i < e.colors; i++ {
			c := color.Black
			if i < len(p.Colors) {
				c = p.Colors[i]
			}
			binary.LittleEndian.PutUint16(tmp[:], c.SNES())
			if _, err := e.w.Write(tmp[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Encode writes every real palette in s to w as little-endian 15-bit BGR
// words. Each palette is padded with black to 2^bpp colors.
func Encode(w io.Writer, s *Set, bpp int) error {
	e := encoder{w: w, colors: 1 << uint(bpp)}
	return e.encode(s)
}
