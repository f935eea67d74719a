package config

import (
	"testing"

	"github.com/bodgit/gracon/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Nil(t, c.Validate())
	assert.Equal(t, 16, c.Colors())
	assert.Equal(t, color.Color{R: 0xff, B: 0xff}, c.Transparent)
}

func TestValidate(t *testing.T) {
	tables := []struct {
		name   string
		modify func(*Config)
	}{
		{"tile width", func(c *Config) { c.TileWidth = 12 }},
		{"tile height", func(c *Config) { c.TileHeight = 32 }},
		{"bpp zero", func(c *Config) { c.BPP = 0 }},
		{"bpp nine", func(c *Config) { c.BPP = 9 }},
		{"palettes", func(c *Config) { c.MaxPalettes = 9 }},
		{"max tiles", func(c *Config) { c.MaxTiles = 0 }},
		{"threshold", func(c *Config) { c.TileThreshold = -1 }},
		{"retries", func(c *Config) { c.MaxRetries = 0 }},
		{"bg multiplier", func(c *Config) { c.Multiplier = 4 }},
		{"odd multiplier", func(c *Config) { c.Mode = Sprite; c.Multiplier = 3 }},
		{"multiplier six", func(c *Config) { c.Mode = Sprite; c.Multiplier = 6 }},
		{"bg mirror", func(c *Config) { c.MirrorTilemapX = true }},
		{"sprite partition", func(c *Config) { c.Mode = Sprite; c.PartitionTilemap = true }},
		{"mode", func(c *Config) { c.Mode = Mode(7) }},
		{"quantizer", func(c *Config) { c.Quantizer = Quantizer(7) }},
		{"empty reference", func(c *Config) { c.ReferencePalette = [][]color.Color{} }},
		{"empty reference row", func(c *Config) { c.ReferencePalette = [][]color.Color{{}} }},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			c := Default()
			table.modify(&c)
			err := c.Validate()
			assert.NotNil(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}

	c := Default()
	c.Mode = Sprite
	c.Multiplier = 4
	c.TileWidth = 16
	assert.Nil(t, c.Validate())

	for _, n := range []int{1, 2, 4, 8} {
		c.Multiplier = n
		assert.Nil(t, c.Validate(), "multiplier %d", n)
	}
}

func TestParse(t *testing.T) {
	m, err := ParseMode("sprite")
	assert.Nil(t, err)
	assert.Equal(t, Sprite, m)
	assert.Equal(t, "sprite", m.String())

	_, err = ParseMode("window")
	assert.True(t, errors.Is(err, ErrInvalid))

	q, err := ParseQuantizer("nodither")
	assert.Nil(t, err)
	assert.Equal(t, NoDither, q)

	_, err = ParseQuantizer("octree")
	assert.True(t, errors.Is(err, ErrInvalid))
}
