package tile

import (
	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/tilehash"
)

// variants lists the mirror combinations tried for every tile, unmirrored
// first.
var variants = [4][2]bool{
	{false, false},
	{true, false},
	{false, true},
	{true, true},
}

type variant struct {
	id   int
	x, y bool
}

func equalIndices(a, b []uint8) bool {
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

// Dedup turns every real tile that can be drawn using an earlier real tile
// into an alias of it.
//
// With a threshold of zero only tiles whose indices are identical under some
// mirroring are matched and the alias keeps its own palette. Otherwise the
// colors of the tile are compared with every earlier tile under all four
// mirrorings and the closest match is used if its error is below the square
// of threshold; the alias then uses the palette of the tile it references.
func Dedup(s *Set, threshold int) {
	if threshold == 0 {
		dedupExact(s)
		return
	}
	dedupError(s, threshold*threshold)
}

func dedupExact(s *Set) {
	table := make(map[uint32][]variant)
	for _, t := range s.Tiles {
		if !t.Real() {
			continue
		}
		for _, v := range variants {
			h := tilehash.Sum(t.Width, t.Height, t.MirrorIndices(v[0], v[1]))
			table[h] = append(table[h], variant{t.ID, v[0], v[1]})
		}
	}

	for _, t := range s.Tiles {
		if !t.Real() {
			continue
		}
		for _, v := range table[t.Hash] {
			if v.id >= t.ID {
				break
			}
			c := s.Tiles[v.id]
			if !c.Real() || c.Width != t.Width || c.Height != t.Height {
				continue
			}
			if equalIndices(c.MirrorIndices(v.x, v.y), t.Indices) {
				t.alias(c, v.x, v.y)
				break
			}
		}
	}
}

// difference returns the summed color error between a and b, giving up once
// it exceeds limit
func difference(a, b []color.Color, limit int) int {
	sum := 0
	for i := range a {
		sum += a[i].DistanceSquared(b[i])
		if limit >= 0 && sum > limit {
			break
		}
	}
	return sum
}

func dedupError(s *Set, limit int) {
	for i, t := range s.Tiles {
		if !t.Real() {
			continue
		}

		var best *Tile
		bestErr := -1
		var bx, by bool
		for _, v := range variants {
			pixels := t.MirrorPixels(v[0], v[1])
			for _, c := range s.Tiles[:i] {
				if !c.Real() || len(c.Pixels) != len(pixels) {
					continue
				}
				if e := difference(pixels, c.Pixels, bestErr); bestErr < 0 || e < bestErr {
					best, bestErr, bx, by = c, e, v[0], v[1]
				}
			}
		}

		if best != nil && bestErr < limit {
			t.alias(best, bx, by)
			t.Palette = best.Palette
		}
	}
}
