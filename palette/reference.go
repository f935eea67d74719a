package palette

import (
	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/pkg/errors"
)

func equalColors(a, b []color.Color) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FromReference builds a Set from a reference palette where each row is one
// palette. Only the first 2^bpp colors of a row are used and they are used
// verbatim, slot 0 included. A row identical to an earlier row becomes an
// alias of it.
func FromReference(rows [][]color.Color, cfg config.Config) (*Set, error) {
	n := cfg.Colors()

	s := &Set{
		Palettes: make([]*Palette, 0, len(rows)),
	}
	count := 0
	for i, row := range rows {
		if len(row) == 0 {
			return nil, errors.Wrapf(config.ErrInvalid, "reference palette row %d is empty", i)
		}
		if len(row) > n {
			row = row[:n]
		}

		p := &Palette{
			ID:     i,
			Ref:    None,
			Colors: append([]color.Color(nil), row...),
			OutID:  None,
		}
		for _, q := range s.Palettes {
			if q.Real() && equalColors(q.Colors, p.Colors) {
				p.Ref = q.ID
				break
			}
		}
		if p.Real() {
			count++
		}

		s.Palettes = append(s.Palettes, p)
	}

	if count > cfg.MaxPalettes {
		return nil, errors.Wrapf(ErrTooManyPalettes, "reference has %d palettes, only %d allowed", count, cfg.MaxPalettes)
	}

	return s, nil
}
