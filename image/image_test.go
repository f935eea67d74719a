package image

import (
	"bytes"
	"image"
	icolor "image/color"
	"image/png"
	"testing"

	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage(t *testing.T) {
	red := color.Color{R: 0xff}
	m := New(4, 2, red)
	assert.Equal(t, 2, m.Bounds().Dy())
	assert.Equal(t, 1, m.Colors())

	m.Set(3, 1, color.Black)
	m.Set(4, 1, color.Black) // ignored

	c, ok := m.Pixel(3, 1)
	assert.True(t, ok)
	assert.Equal(t, color.Black, c)

	_, ok = m.Pixel(4, 1)
	assert.False(t, ok)

	m.Fill(image.Rect(-1, -1, 2, 1), color.Black)
	assert.Equal(t, []color.Color{color.Black, color.Black, red, red, red, red, red, color.Black}, m.Pix)
	assert.Equal(t, icolor.Color(color.Black), m.At(0, 0))
}

func TestFromImagePads(t *testing.T) {
	cfg := config.Default()

	src := image.NewRGBA(image.Rect(2, 3, 12, 13))
	for y := 3; y < 13; y++ {
		for x := 2; x < 12; x++ {
			src.Set(x, y, icolor.RGBA{0x10, 0x20, 0x30, 0xff})
		}
	}

	m, err := FromImage(src, cfg)
	require.Nil(t, err)
	assert.Equal(t, 16, m.Width)
	assert.Equal(t, 16, m.Height)

	c, _ := m.Pixel(0, 0)
	assert.Equal(t, color.Color{R: 0x10, G: 0x20, B: 0x30}, c)
	c, _ = m.Pixel(9, 9)
	assert.Equal(t, color.Color{R: 0x10, G: 0x20, B: 0x30}, c)
	c, _ = m.Pixel(10, 9)
	assert.Equal(t, cfg.Transparent, c)
	c, _ = m.Pixel(15, 15)
	assert.Equal(t, cfg.Transparent, c)
	assert.Equal(t, 2, m.Colors())
}

func TestFromImageEmpty(t *testing.T) {
	_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), config.Default())
	assert.Equal(t, ErrEmpty, err)
}

func gradient() *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			src.Set(x, y, icolor.RGBA{uint8(x * 8), uint8(y * 8), uint8(x + y), 0xff})
		}
	}
	// Keep some transparency that must survive the quantizer
	for x := 0; x < 32; x++ {
		src.Set(x, 0, icolor.RGBA{0xff, 0x00, 0xff, 0xff})
	}
	return src
}

func TestMaxColors(t *testing.T) {
	tables := []struct {
		bpp, palettes int
		want          int
	}{
		{4, 1, 16},
		{4, 8, 121},
		{2, 1, 4},
		{8, 2, 256},
	}

	for _, table := range tables {
		cfg := config.Default()
		cfg.BPP, cfg.MaxPalettes = table.bpp, table.palettes
		assert.Equal(t, table.want, maxColors(cfg), "%d bpp, %d palettes", table.bpp, table.palettes)
	}
}

func TestFromImageReduces(t *testing.T) {
	cfg := config.Default()
	cfg.BPP = 2

	m, err := FromImage(gradient(), cfg)
	require.Nil(t, err)
	assert.True(t, m.Colors() <= maxColors(cfg)+1, "got %d colors", m.Colors())

	for x := 0; x < 32; x++ {
		c, _ := m.Pixel(x, 0)
		assert.Equal(t, cfg.Transparent, c)
	}
}

func TestFromImageNone(t *testing.T) {
	cfg := config.Default()
	cfg.BPP = 2
	cfg.Quantizer = config.None

	m, err := FromImage(gradient(), cfg)
	require.Nil(t, err)
	assert.Equal(t, countColors(gradient()), m.Colors())
}

func TestDecode(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	b := new(bytes.Buffer)
	require.Nil(t, png.Encode(b, src))

	m, err := Decode(b, config.Default())
	require.Nil(t, err)
	assert.Equal(t, 8, m.Width)

	_, err = Decode(bytes.NewReader([]byte("not an image")), config.Default())
	assert.NotNil(t, err)
}

func TestPaletteRows(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, icolor.RGBA{1, 2, 3, 0xff})

	rows, err := PaletteRows(src)
	require.Nil(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 3)
	assert.Equal(t, color.Color{R: 1, G: 2, B: 3}, rows[1][1])
}
