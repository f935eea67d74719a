package gracon

import (
	"bytes"
	stdimage "image"
	"io"
	"log"
	"testing"

	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/bodgit/gracon/image"
	"github.com/bodgit/gracon/tilemap"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGB(0xff0000)
	blue = color.RGB(0x0000ff)
)

func compile(t *testing.T, cfg config.Config, frames ...*image.Image) (*Result, error) {
	c, err := New(cfg, log.New(io.Discard, "", 0))
	require.Nil(t, err)
	return c.Compile(frames)
}

// stripes returns an image where the left half of every tile is red
func stripes(width, height int, cfg config.Config) *image.Image {
	m := image.New(width, height, cfg.Transparent)
	for x := 0; x < width; x += 8 {
		m.Fill(stdimage.Rect(x, 0, x+4, height), red)
	}
	return m
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.BPP = 0
	_, err := New(cfg, log.New(io.Discard, "", 0))
	assert.True(t, errors.Is(err, config.ErrInvalid))

	_, err = compile(t, config.Default())
	assert.Equal(t, ErrNoFrames, err)
}

func TestCompileIdentical(t *testing.T) {
	cfg := config.Default()

	r, err := compile(t, cfg, stripes(16, 16, cfg))
	require.Nil(t, err)

	stats := r.Stats()
	assert.Equal(t, 4, stats.Tiles)
	assert.Equal(t, 1, stats.RealTiles)
	assert.Equal(t, 1, stats.RealPalettes)
	assert.Equal(t, 0, stats.Retries)

	b := new(bytes.Buffer)
	require.Nil(t, r.EncodeTilemap(b, 0))
	assert.Equal(t, make([]byte, 8), b.Bytes())

	b.Reset()
	require.Nil(t, r.EncodeTiles(b, 0))
	assert.Equal(t, 32, b.Len())

	b.Reset()
	require.Nil(t, r.EncodePalettes(b))
	require.Equal(t, 32, b.Len())
	assert.Equal(t, []byte{0x1f, 0x7c, 0x1f, 0x00}, b.Bytes()[:4])

	assert.NotNil(t, r.EncodeTiles(b, 1))
}

func TestCompileMirror(t *testing.T) {
	cfg := config.Default()

	m := image.New(16, 8, cfg.Transparent)
	m.Fill(stdimage.Rect(0, 0, 3, 8), red)
	m.Fill(stdimage.Rect(13, 0, 16, 8), red)

	r, err := compile(t, cfg, m)
	require.Nil(t, err)
	assert.Equal(t, 1, r.Stats().RealTiles)

	alias := r.Frames[0].Tiles.Tiles[1]
	assert.Equal(t, 0, alias.Ref)
	assert.True(t, alias.XMirror)
	assert.False(t, alias.YMirror)

	resolved, x, y, err := r.Frames[0].Tiles.Resolve(1)
	require.Nil(t, err)
	row := []uint8{0, 0, 0, 0, 0, 1, 1, 1}
	var want []uint8
	for i := 0; i < 8; i++ {
		want = append(want, row...)
	}
	assert.Equal(t, want, resolved.MirrorIndices(x, y))

	b := new(bytes.Buffer)
	require.Nil(t, r.EncodeTilemap(b, 0))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, b.Bytes())
}

// distinct returns an image of n tiles that differ from each other by at
// least one pixel under every mirroring
func distinct(n int) *image.Image {
	a, b := color.RGB(0x808080), color.RGB(0x888080)

	cols := 20
	rows := (n + cols - 1) / cols
	m := image.New(cols*8, rows*8, a)
	for k := 0; k < n; k++ {
		x, y := (k%cols)*8, (k/cols)*8
		m.Set(x, y, b)
		for bit := 0; bit < 9; bit++ {
			if k&(1<<uint(bit)) != 0 {
				m.Set(x+bit%7, y+1+bit/7, b)
			}
		}
	}
	return m
}

func TestCompileBudget(t *testing.T) {
	cfg := config.Default()
	cfg.MaxTiles = 256

	r, err := compile(t, cfg, distinct(300))
	require.Nil(t, err)

	stats := r.Stats()
	assert.Equal(t, 300, stats.Tiles)
	assert.Equal(t, 2, stats.Retries)
	assert.Equal(t, 25, stats.Threshold)
	assert.True(t, stats.RealTiles <= 256, "%d real tiles", stats.RealTiles)

	cfg.MaxRetries = 1
	_, err = compile(t, cfg, distinct(300))
	assert.True(t, errors.Is(err, ErrTileBudget))

	cfg.Optimize = false
	_, err = compile(t, cfg, distinct(300))
	assert.True(t, errors.Is(err, ErrTileBudget))
}

func TestCompileNoOptimize(t *testing.T) {
	cfg := config.Default()
	cfg.Optimize = false

	r, err := compile(t, cfg, stripes(16, 16, cfg))
	require.Nil(t, err)
	assert.Equal(t, 4, r.Stats().RealTiles)
}

func TestCompileIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.MaxPalettes = 2
	cfg.TileThreshold = 20

	frames := []*image.Image{distinct(60), stripes(32, 16, cfg)}
	frames[1].Fill(stdimage.Rect(8, 8, 16, 16), blue)

	encode := func() []byte {
		r, err := compile(t, cfg, frames...)
		require.Nil(t, err)

		b := new(bytes.Buffer)
		require.Nil(t, r.EncodePalettes(b))
		for i := range frames {
			require.Nil(t, r.EncodeTiles(b, i))
			require.Nil(t, r.EncodeTilemap(b, i))
		}
		return b.Bytes()
	}

	assert.Equal(t, encode(), encode())
}

func TestCompileStatic(t *testing.T) {
	cfg := config.Default()
	cfg.StaticTiles = true

	first := stripes(16, 8, cfg)
	second := stripes(16, 8, cfg)
	second.Fill(stdimage.Rect(8, 0, 16, 8), blue)

	r, err := compile(t, cfg, first, second)
	require.Nil(t, err)

	stats := r.Stats()
	assert.Equal(t, 4, stats.Tiles)
	assert.Equal(t, 2, stats.RealTiles)
	assert.Same(t, r.Frames[0].Tiles, r.Frames[1].Tiles)
	assert.Len(t, r.Frames[1].Normal(), 2)

	b := new(bytes.Buffer)
	require.Nil(t, r.EncodeTiles(b, 1))
	assert.Equal(t, 0, b.Len())

	require.Nil(t, r.EncodeTiles(b, 0))
	assert.Equal(t, 64, b.Len())

	b.Reset()
	require.Nil(t, r.EncodeTilemap(b, 1))
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x00}, b.Bytes())
}

func TestCompileSprite(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.Sprite

	m := image.New(32, 16, cfg.Transparent)
	m.Fill(stdimage.Rect(4, 4, 12, 12), red)

	r, err := compile(t, cfg, m)
	require.Nil(t, err)
	require.Len(t, r.Frames[0].Normal(), 1)

	b := new(bytes.Buffer)
	require.Nil(t, r.EncodeTilemap(b, 0))
	assert.Equal(t, []byte{4, 4, 0x00, 0x00}, b.Bytes())

	b.Reset()
	require.Nil(t, r.EncodeSpriteTilemap(b, 0, true, false))
	assert.Equal(t, []byte{20, 4, 0x00, 0x40}, b.Bytes())

	b.Reset()
	require.Nil(t, r.EncodeBigTiles(b, 0))
	assert.Equal(t, 0, b.Len())
}

func TestCompileSpriteBig(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.Sprite
	cfg.Multiplier = 2

	m := image.New(32, 32, cfg.Transparent)
	m.Fill(stdimage.Rect(0, 0, 16, 16), red)

	r, err := compile(t, cfg, m)
	require.Nil(t, err)
	assert.Len(t, r.Frames[0].Normal(), 0)
	assert.Equal(t, 1, r.Stats().BigTiles)

	b := new(bytes.Buffer)
	require.Nil(t, r.EncodeBigTiles(b, 0))
	assert.Equal(t, 4*32, b.Len())

	b.Reset()
	require.Nil(t, r.EncodeBigTilemap(b, 0, false, false))
	assert.Equal(t, []byte{0, 0, 0x00, 0x00}, b.Bytes())
}

func TestCompileTooManySprites(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.Sprite

	m := image.New(256, 40, cfg.Transparent)
	for y := 0; y < 40; y += 8 {
		for x := 0; x < 256; x += 8 {
			m.Fill(stdimage.Rect(x, y, x+8, y+8), red)
		}
	}

	_, err := compile(t, cfg, m)
	assert.True(t, errors.Is(err, ErrTooManySprites))
}

func TestCompileReference(t *testing.T) {
	cfg := config.Default()
	cfg.ReferencePalette = [][]color.Color{{cfg.Transparent, blue}}

	_, err := compile(t, cfg, stripes(16, 8, cfg))
	assert.NotNil(t, err)

	cfg.ReferencePalette = [][]color.Color{{cfg.Transparent, blue, red}}
	r, err := compile(t, cfg, stripes(16, 8, cfg))
	require.Nil(t, err)

	b := new(bytes.Buffer)
	require.Nil(t, r.EncodePalettes(b))
	assert.Equal(t, []byte{0x1f, 0x7c, 0x00, 0x7c, 0x1f, 0x00}, b.Bytes()[:6])
}

func TestCompilePartitionTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.PartitionTilemap = true

	r, err := compile(t, cfg, stripes(72*8, 8, cfg))
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, tilemap.ErrTooLarge))

	_, err = compile(t, cfg, stripes(64*8, 8, cfg))
	assert.Nil(t, err)
}

func TestCompileSpritePosition(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.Sprite

	m := image.New(320, 8, cfg.Transparent)
	m.Fill(stdimage.Rect(296, 0, 304, 8), red)

	r, err := compile(t, cfg, m)
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, tilemap.ErrOutOfRange))

	// In range as placed but not once mirrored
	m = image.New(320, 8, cfg.Transparent)
	m.Fill(stdimage.Rect(0, 0, 8, 8), red)

	_, err = compile(t, cfg, m)
	assert.True(t, errors.Is(err, tilemap.ErrOutOfRange))
}

func TestMaxTiles(t *testing.T) {
	cfg := config.Default()
	c, err := New(cfg, log.New(io.Discard, "", 0))
	require.Nil(t, err)
	assert.Equal(t, 0x3ff, c.maxTiles())

	cfg.Mode = config.Sprite
	c, err = New(cfg, log.New(io.Discard, "", 0))
	require.Nil(t, err)
	assert.Equal(t, maxSpriteTiles, c.maxTiles())

	cfg.MaxTiles = 64
	c, err = New(cfg, log.New(io.Discard, "", 0))
	require.Nil(t, err)
	assert.Equal(t, 64, c.maxTiles())
}
