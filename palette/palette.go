/*
Package palette implements the global set of hardware palettes.

Every palette holds up to 2^bpp colors with the transparent color in slot 0.
Palettes live in a Set and are addressed by their position; a palette that
duplicates another is kept in place as an alias pointing at the real one so
positions never change.
*/
package palette

import (
	"github.com/bodgit/gracon/color"
	"github.com/pkg/errors"
)

// None marks an entry that does not reference another entry.
const None = -1

var (
	// ErrTooManyPalettes is returned when the colors used cannot be
	// reduced to the configured number of palettes.
	ErrTooManyPalettes = errors.New("palette: too many palettes required")
	// ErrReferenceCycle is returned when following palette references
	// does not terminate.
	ErrReferenceCycle = errors.New("palette: reference cycle")
	// ErrBadReference is returned for a reference outside the set.
	ErrBadReference = errors.New("palette: reference out of range")
)

// Palette is a single hardware palette.
type Palette struct {
	ID     int
	Ref    int
	Colors []color.Color
	// OutID is the position of the palette in the output stream, or
	// None for an alias.
	OutID int
}

// Real returns true if the palette is not an alias.
func (p *Palette) Real() bool {
	return p.Ref == None
}

// Index returns the position of c in the palette or -1.
func (p *Palette) Index(c color.Color) int {
	for i, v := range p.Colors {
		if v == c {
			return i
		}
	}
	return -1
}

// Nearest returns the index of the color closest to c and its distance.
// The first of several equally close colors wins.
func (p *Palette) Nearest(c color.Color) (int, int) {
	best, bestErr := 0, -1
	for i, v := range p.Colors {
		d := c.DistanceSquared(v)
		if bestErr < 0 || d < bestErr {
			best, bestErr = i, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestErr
}

// Set is the collection of palettes used by all tiles.
type Set struct {
	Palettes []*Palette
}

// Len returns the number of palettes, including aliases.
func (s *Set) Len() int {
	return len(s.Palettes)
}

// Resolve follows references from the palette at position id to the real
// palette.
func (s *Set) Resolve(id int) (*Palette, error) {
	for hops := 0; hops <= len(s.Palettes); hops++ {
		if id < 0 || id >= len(s.Palettes) {
			return nil, errors.Wrapf(ErrBadReference, "palette %d", id)
		}
		p := s.Palettes[id]
		if p.Real() {
			return p, nil
		}
		id = p.Ref
	}
	return nil, errors.Wrapf(ErrReferenceCycle, "palette %d", id)
}

// Real returns the palettes that are not aliases, in order.
func (s *Set) Real() []*Palette {
	out := make([]*Palette, 0, len(s.Palettes))
	for _, p := range s.Palettes {
		if p.Real() {
			out = append(out, p)
		}
	}
	return out
}

// AssignOutIDs numbers the real palettes densely from zero and returns how
// many there are.
func (s *Set) AssignOutIDs() int {
	n := 0
	for _, p := range s.Palettes {
		if p.Real() {
			p.OutID = n
			n++
		} else {
			p.OutID = None
		}
	}
	return n
}
