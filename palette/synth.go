package palette

import (
	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/pkg/errors"
)

// colorSet is a list of distinct colors sorted by value. It never contains
// the transparent color.
type colorSet []color.Color

func newColorSet(colors []color.Color, transparent color.Color) colorSet {
	seen := make(map[color.Color]struct{}, len(colors))
	s := make(colorSet, 0, len(colors))
	for _, c := range colors {
		if _, ok := seen[c]; ok || c == transparent {
			continue
		}
		seen[c] = struct{}{}
		s = append(s, c)
	}
	color.SortByValue(s)
	return s
}

func (s colorSet) equal(o colorSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// subsetOf returns true if every color in s is also in o
func (s colorSet) subsetOf(o colorSet) bool {
	if len(s) > len(o) {
		return false
	}
	j := 0
	for _, c := range s {
		for j < len(o) && o[j].Value() < c.Value() {
			j++
		}
		if j == len(o) || o[j] != c {
			return false
		}
		j++
	}
	return true
}

func unionLen(a, b colorSet) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch va, vb := a[i].Value(), b[j].Value(); {
		case va < vb:
			i++
		case va > vb:
			j++
		default:
			i++
			j++
		}
		n++
	}
	return n + len(a) - i + len(b) - j
}

func union(a, b colorSet) colorSet {
	u := make(colorSet, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch va, vb := a[i].Value(), b[j].Value(); {
		case va < vb:
			u = append(u, a[i])
			i++
		case va > vb:
			u = append(u, b[j])
			j++
		default:
			u = append(u, a[i])
			i++
			j++
		}
	}
	u = append(u, a[i:]...)
	return append(u, b[j:]...)
}

// closestPair returns the positions of the two most similar colors
func (s colorSet) closestPair() (int, int) {
	bi, bj, best := 0, 1, -1
	for i := 0; i < len(s); i++ {
		for j := i + 1; j < len(s); j++ {
			if d := s[i].DistanceSquared(s[j]); best < 0 || d < best {
				bi, bj, best = i, j, d
			}
		}
	}
	return bi, bj
}

// reduce drops colors until no more than capacity remain, each time removing
// one color of the closest remaining pair
func (s colorSet) reduce(capacity int) colorSet {
	if len(s) <= capacity {
		return s
	}
	r := append(colorSet(nil), s...)
	for len(r) > capacity {
		_, j := r.closestPair()
		r = append(r[:j], r[j+1:]...)
	}
	return r
}

// removeRedundant drops duplicate sets and any set contained in another
func removeRedundant(sets []colorSet) []colorSet {
	unique := make([]colorSet, 0, len(sets))
next:
	for _, s := range sets {
		for _, u := range unique {
			if s.equal(u) {
				continue next
			}
		}
		unique = append(unique, s)
	}

	out := make([]colorSet, 0, len(unique))
	for i, s := range unique {
		redundant := false
		for j, o := range unique {
			if i != j && s.subsetOf(o) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(unique) > 0 {
		longest := unique[0]
		for _, s := range unique[1:] {
			if len(s) > len(longest) {
				longest = s
			}
		}
		out = append(out, longest)
	}

	return out
}

// cheapestPair returns the two sets whose union is smallest, provided it is
// no bigger than limit
func cheapestPair(sets []colorSet, limit int) (int, int, bool) {
	bi, bj, best := -1, -1, limit+1
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			if n := unionLen(sets[i], sets[j]); n < best {
				bi, bj, best = i, j, n
			}
		}
	}
	return bi, bj, bi >= 0
}

// mergeLossless unions sets while the result still fits in a palette
func mergeLossless(sets []colorSet, capacity int) []colorSet {
	sets = append([]colorSet(nil), sets...)
	for {
		i, j, ok := cheapestPair(sets, capacity)
		if !ok {
			return sets
		}
		sets[i] = union(sets[i], sets[j])
		sets = append(sets[:j], sets[j+1:]...)
	}
}

// mergeLossy unions the cheapest pair of sets, dropping colors as needed,
// until there are no more than max sets
func mergeLossy(sets []colorSet, capacity, max int) ([]colorSet, error) {
	sets = append([]colorSet(nil), sets...)
	for len(sets) > max {
		i, j, ok := cheapestPair(sets, int(^uint(0)>>2))
		if !ok {
			return nil, errors.Wrapf(ErrTooManyPalettes, "need %d palettes, only %d allowed", len(sets), max)
		}
		sets[i] = union(sets[i], sets[j]).reduce(capacity)
		sets = append(sets[:j], sets[j+1:]...)
	}
	return sets, nil
}

// Synthesize builds the smallest set of palettes covering the local palettes
// of every tile. Local palettes are first reduced to fit a single palette,
// then merged without loss for as long as possible and finally merged with
// loss of color until no more than cfg.MaxPalettes remain.
func Synthesize(local [][]color.Color, cfg config.Config) (*Set, error) {
	capacity := cfg.Colors() - 1

	sets := make([]colorSet, 0, len(local))
	for _, l := range local {
		sets = append(sets, newColorSet(l, cfg.Transparent).reduce(capacity))
	}

	for {
		n := len(sets)
		sets = mergeLossless(removeRedundant(sets), capacity)
		if len(sets) == n {
			break
		}
	}

	sets, err := mergeLossy(sets, capacity, cfg.MaxPalettes)
	if err != nil {
		return nil, err
	}

	if len(sets) == 0 {
		sets = append(sets, colorSet{})
	}

	s := &Set{
		Palettes: make([]*Palette, 0, len(sets)),
	}
	for i, set := range sets {
		colors := make([]color.Color, 0, len(set)+1)
		colors = append(colors, cfg.Transparent)
		colors = append(colors, set...)
		color.SortByHue(colors[1:])

		s.Palettes = append(s.Palettes, &Palette{
			ID:     i,
			Ref:    None,
			Colors: colors,
			OutID:  None,
		})
	}

	return s, nil
}
