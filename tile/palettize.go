package tile

import (
	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/bodgit/gracon/palette"
	"github.com/bodgit/gracon/tilehash"
	"github.com/pkg/errors"
)

// ErrUnfitPalette is returned when a reference palette does not contain a
// color used by a tile.
var ErrUnfitPalette = errors.New("tile: color not in palette")

type palettizer struct {
	candidates  []*palette.Palette
	transparent color.Color
	force       bool
	strict      bool
}

// cost returns the total error of drawing pixels with p, giving up once it
// reaches limit
func (z *palettizer) cost(pixels []color.Color, p *palette.Palette, limit int) int {
	sum := 0
	for _, c := range pixels {
		if c == z.transparent {
			continue
		}
		_, d := p.Nearest(c)
		sum += d
		if limit >= 0 && sum >= limit {
			break
		}
	}
	return sum
}

func (z *palettizer) palettize(t *Tile) error {
	var best *palette.Palette
	bestErr := -1
	for _, p := range z.candidates {
		if sum := z.cost(t.Pixels, p, bestErr); bestErr < 0 || sum < bestErr {
			best, bestErr = p, sum
		}
	}
	if best == nil {
		return errors.New("tile: no palettes")
	}

	indices := make([]uint8, len(t.Pixels))
	pixels := make([]color.Color, len(t.Pixels))
	for i, c := range t.Pixels {
		idx := 0
		if c != z.transparent {
			var d int
			idx, d = best.Nearest(c)
			if d != 0 {
				if z.strict {
					return errors.Wrapf(ErrUnfitPalette, "color %s of tile at %d,%d in frame %d", c, t.X, t.Y, t.Frame)
				}
				if z.force {
					idx = 0
				}
			}
		}
		indices[i] = uint8(idx)
		if idx < len(best.Colors) {
			pixels[i] = best.Colors[idx]
		} else {
			pixels[i] = z.transparent
		}
	}

	t.Indices = indices
	t.Pixels = pixels
	t.Hash = tilehash.Sum(t.Width, t.Height, indices)
	t.Palette = best.ID

	return nil
}

// Palettize picks the palette with the lowest total error for every real
// tile in s and replaces its pixels with indices into that palette. Pixels of
// the transparent color always use index 0.
//
// With cfg.ForcePalette set, any pixel without an exact match uses index 0.
// Otherwise when palettes come from a reference palette a pixel without an
// exact match is an error.
func Palettize(s *Set, palettes *palette.Set, cfg config.Config) error {
	z := palettizer{
		candidates:  palettes.Real(),
		transparent: cfg.Transparent,
		force:       cfg.ForcePalette,
		strict:      cfg.ReferencePalette != nil && !cfg.ForcePalette,
	}

	for _, t := range s.Tiles {
		if !t.Real() {
			continue
		}
		if err := z.palettize(t); err != nil {
			return err
		}
	}

	return nil
}
