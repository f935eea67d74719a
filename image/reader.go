package image

import (
	"image"
	icolor "image/color"
	"image/color/palette"
	"io"
	"os"

	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/esimov/colorquant"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// ErrEmpty is returned for an image with no pixels.
var ErrEmpty = errors.New("image: image is empty")

func padded(v, size int) int {
	if mod := v % size; mod > 0 {
		return v + size - mod
	}
	return v
}

func countColors(m image.Image) int {
	b := m.Bounds()
	colors := make(map[color.Color]struct{})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			colors[color.Convert(m.At(x, y))] = struct{}{}
		}
	}
	return len(colors)
}

// maxColors is the number of colors an image is reduced to before tiles are
// extracted, the opaque colors of every palette plus the transparent color
func maxColors(cfg config.Config) int {
	n := (cfg.Colors()-1)*cfg.MaxPalettes + 1
	if n > 256 {
		n = 256
	}
	return n
}

func reduce(m *image.RGBA, n int, q config.Quantizer) image.Image {
	b := m.Bounds()
	switch q {
	case config.MedianCut:
		mq := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(b, mq.Quantize(make(icolor.Palette, 0, n), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
		return pm
	case config.NoDither:
		dst := image.NewPaletted(b, palette.WebSafe)
		return colorquant.NoDither.Quantize(m, dst, n, false, true)
	default:
		return m
	}
}

// FromImage converts src into an Image. The result is padded to a multiple
// of the tile size using the transparent color and, unless the source
// already has few enough colors, reduced with the configured quantizer.
// Pixels that were exactly the transparent color stay that way.
func FromImage(src image.Image, cfg config.Config) (*Image, error) {
	sb := src.Bounds()
	if sb.Empty() {
		return nil, ErrEmpty
	}

	b := image.Rect(0, 0, padded(sb.Dx(), cfg.TileWidth), padded(sb.Dy(), cfg.TileHeight))

	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, image.NewUniform(cfg.Transparent), image.Point{}, draw.Src)
	draw.Draw(rgba, sb.Sub(sb.Min), src, sb.Min, draw.Src)

	var reduced image.Image = rgba
	if n := maxColors(cfg); countColors(rgba) > n {
		reduced = reduce(rgba, n, cfg.Quantizer)
	}

	m := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]color.Color, b.Dx()*b.Dy()),
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.Convert(rgba.At(x, y))
			if c != cfg.Transparent {
				c = color.Convert(reduced.At(x, y))
			}
			m.Pix[y*m.Width+x] = c
		}
	}

	return m, nil
}

// Decode reads an image in any registered format from r and converts it
// with FromImage.
func Decode(r io.Reader, cfg config.Config) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "image: unable to decode")
	}
	return FromImage(src, cfg)
}

// Open decodes the image stored in file.
func Open(file string, cfg config.Config) (*Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", file)
	}
	return m, nil
}

// PaletteRows returns every row of src as a list of colors, with no padding
// or color reduction. It is used to read reference palette images where each
// row is one palette.
func PaletteRows(src image.Image) ([][]color.Color, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, ErrEmpty
	}

	rows := make([][]color.Color, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]color.Color, 0, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			row = append(row, color.Convert(src.At(x, y)))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// OpenPaletteRows decodes file and returns its rows with PaletteRows.
func OpenPaletteRows(file string) ([][]color.Color, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "image: unable to decode %s", file)
	}
	return PaletteRows(src)
}
