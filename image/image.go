/*
Package image implements the decoded source image consumed by the compiler.

An Image is a rectangular grid of opaque RGB samples whose dimensions are a
multiple of the tile size. Images are normally built with FromImage which
pads the source with the transparent color and, if the source has more colors
than the configured palettes could ever hold, reduces it with a quantizer
first.
*/
package image

import (
	"image"
	icolor "image/color"

	"github.com/bodgit/gracon/color"
)

// Image is a decoded image.
type Image struct {
	Width  int
	Height int
	// Pix holds the samples in row-major order
	Pix []color.Color
}

// New returns an Image of the given size with every sample set to fill.
func New(width, height int, fill color.Color) *Image {
	m := &Image{
		Width:  width,
		Height: height,
		Pix:    make([]color.Color, width*height),
	}
	for i := range m.Pix {
		m.Pix[i] = fill
	}
	return m
}

// ColorModel implements the image.Image interface.
func (m *Image) ColorModel() icolor.Model {
	return color.Model
}

// Bounds implements the image.Image interface.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements the image.Image interface.
func (m *Image) At(x, y int) icolor.Color {
	c, _ := m.Pixel(x, y)
	return c
}

// Pixel returns the sample at (x, y) and whether the point was inside the
// image.
func (m *Image) Pixel(x, y int) (color.Color, bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.Color{}, false
	}
	return m.Pix[y*m.Width+x], true
}

// Set sets the sample at (x, y), points outside the image are ignored.
func (m *Image) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = c
}

// Fill sets every sample in the rectangle r to c.
func (m *Image) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[y*m.Width+x] = c
		}
	}
}

// Colors returns the number of distinct colors in the image.
func (m *Image) Colors() int {
	seen := make(map[color.Color]struct{})
	for _, c := range m.Pix {
		seen[c] = struct{}{}
	}
	return len(seen)
}
