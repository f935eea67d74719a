/*
Package color implements the 24-bit RGB color used throughout the compiler,
its packed 15-bit SNES representation and the weighted "redmean" distance
used to compare colors.

A Color is a plain value so it can be compared with == and used as a map key.
It also satisfies the image/color.Color interface.
*/
package color

import (
	"fmt"
	"math"
	"sort"

	icolor "image/color"
)

// Color is a single opaque RGB sample.
type Color struct {
	R, G, B uint8
}

// Black is the color used to pad unused palette slots.
var Black = Color{}

// RGB returns the Color for a packed 0xRRGGBB value.
func RGB(v uint32) Color {
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// FromSNES expands a packed 15-bit SNES color. The low three bits of each
// channel are lost in the packing so they come back as zero.
func FromSNES(v uint16) Color {
	return Color{
		R: uint8(v&0x1f) << 3,
		G: uint8(v>>5&0x1f) << 3,
		B: uint8(v>>10&0x1f) << 3,
	}
}

// Convert returns the Color nearest to any image/color.Color, ignoring
// alpha.
func Convert(c icolor.Color) Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// Model converts any color to a Color.
var Model = icolor.ModelFunc(func(c icolor.Color) icolor.Color {
	return Convert(c)
})

// Value returns the packed 0xRRGGBB value.
func (c Color) Value() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// SNES returns the color packed as 0bbbbbgggggrrrrr.
func (c Color) SNES() uint16 {
	return uint16(c.R>>3) | uint16(c.G>>3)<<5 | uint16(c.B>>3)<<10
}

// RGBA implements the image/color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func (c Color) String() string {
	return fmt.Sprintf("%06x", c.Value())
}

// DistanceSquared returns the weighted redmean distance between two colors.
// Red and blue are weighted by the mean red value of both colors, green is
// weighted by a constant factor of four.
func (c Color) DistanceSquared(o Color) int {
	rm := (int(c.R) + int(o.R)) >> 1
	dr := int(c.R) - int(o.R)
	dg := int(c.G) - int(o.G)
	db := int(c.B) - int(o.B)
	return ((512+rm)*dr*dr)>>8 + 4*dg*dg + ((767-rm)*db*db)>>8
}

func (c Color) bounds() (r, g, b, min, max float64) {
	r = float64(c.R) / 0xff
	g = float64(c.G) / 0xff
	b = float64(c.B) / 0xff
	return r, g, b, math.Min(r, math.Min(g, b)), math.Max(r, math.Max(g, b))
}

// Lightness returns the HSL lightness in the range [0, 1].
func (c Color) Lightness() float64 {
	_, _, _, min, max := c.bounds()
	return (max + min) / 2
}

// Saturation returns the HSL saturation in the range [0, 1].
func (c Color) Saturation() float64 {
	_, _, _, min, max := c.bounds()
	delta := max - min
	if delta == 0 {
		return 0
	}
	if (max+min)/2 < 0.5 {
		return delta / (max + min)
	}
	return delta / (2 - max - min)
}

// Hue returns the HSL hue in the range [0, 1).
func (c Color) Hue() float64 {
	r, g, b, min, max := c.bounds()
	delta := max - min
	if delta == 0 {
		return 0
	}

	var h float64
	switch max {
	case r:
		h = (g - b) / delta
	case g:
		h = 2 + (b-r)/delta
	default:
		h = 4 + (r-g)/delta
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h
}

// Less orders colors by hue, then lightness and finally by packed value so
// that the ordering is total.
func Less(a, b Color) bool {
	if ha, hb := a.Hue(), b.Hue(); ha != hb {
		return ha < hb
	}
	if la, lb := a.Lightness(), b.Lightness(); la != lb {
		return la < lb
	}
	return a.Value() < b.Value()
}

// SortByHue sorts colors in place using Less.
func SortByHue(colors []Color) {
	sort.SliceStable(colors, func(i, j int) bool {
		return Less(colors[i], colors[j])
	})
}

// SortByValue sorts colors in place by packed value.
func SortByValue(colors []Color) {
	sort.Slice(colors, func(i, j int) bool {
		return colors[i].Value() < colors[j].Value()
	})
}
