/*
Package config holds the compiler configuration.

A Config is built once, validated with Validate and then treated as read-only
by every stage of the compiler.
*/
package config

import (
	"fmt"

	"github.com/bodgit/gracon/color"
	"github.com/pkg/errors"
)

// Mode selects how tiles are extracted and how the tilemap is written.
type Mode int

const (
	// Background mode cuts the image into a regular grid and writes a
	// screen tilemap.
	Background Mode = iota
	// Sprite mode only extracts tiles containing opaque pixels and writes
	// a relative sprite tilemap.
	Sprite
)

func (m Mode) String() string {
	switch m {
	case Background:
		return "bg"
	case Sprite:
		return "sprite"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode for its name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bg":
		return Background, nil
	case "sprite":
		return Sprite, nil
	}
	return 0, errors.Wrapf(ErrInvalid, "unknown mode %q", s)
}

// Quantizer selects how an input image with too many colors is reduced
// before tiles are extracted.
type Quantizer int

const (
	// MedianCut uses a median cut quantizer.
	MedianCut Quantizer = iota
	// NoDither uses a quantizer without error diffusion.
	NoDither
	// None leaves the colors untouched.
	None
)

func (q Quantizer) String() string {
	switch q {
	case MedianCut:
		return "median"
	case NoDither:
		return "nodither"
	case None:
		return "none"
	}
	return fmt.Sprintf("Quantizer(%d)", int(q))
}

// ParseQuantizer returns the Quantizer for its name.
func ParseQuantizer(s string) (Quantizer, error) {
	for _, q := range []Quantizer{MedianCut, NoDither, None} {
		if q.String() == s {
			return q, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalid, "unknown quantizer %q", s)
}

// ErrInvalid is returned for any option that is out of range.
var ErrInvalid = errors.New("config: invalid option")

// Config is the complete set of compiler options.
type Config struct {
	TileWidth  int
	TileHeight int
	BPP        int

	MaxPalettes int
	MaxTiles    int

	// Transparent is forced into slot 0 of every palette.
	Transparent color.Color

	// TileThreshold is the starting error allowed between two tiles for
	// them to be considered equal. Zero means exact matches only.
	TileThreshold int
	// MaxRetries bounds how many times the threshold is raised when the
	// number of tiles exceeds MaxTiles.
	MaxRetries int
	// Optimize enables tile deduplication.
	Optimize bool

	Mode Mode

	// Multiplier groups Multiplier x Multiplier sprite tiles into one big
	// tile when greater than one.
	Multiplier       int
	BigTileThreshold int
	MaxBigTiles      int

	// ReferencePalette, if set, is used verbatim instead of synthesizing
	// palettes. Each row is one palette.
	ReferencePalette [][]color.Color

	PartitionTilemap bool
	ForcePalette     bool
	StaticTiles      bool

	MirrorTilemapX bool
	MirrorTilemapY bool

	Quantizer Quantizer
}

// Default returns the default configuration; 8x8 4bpp background tiles with
// a single palette and magenta as the transparent color.
func Default() Config {
	return Config{
		TileWidth:        8,
		TileHeight:       8,
		BPP:              4,
		MaxPalettes:      1,
		MaxTiles:         0x3ff,
		Transparent:      color.RGB(0xff00ff),
		TileThreshold:    0,
		MaxRetries:       24,
		Optimize:         true,
		Mode:             Background,
		Multiplier:       1,
		BigTileThreshold: 2,
		MaxBigTiles:      4,
		Quantizer:        MedianCut,
	}
}

// Colors returns the number of colors in a palette, including the
// transparent color.
func (c Config) Colors() int {
	return 1 << uint(c.BPP)
}

func checkRange(name string, v, min, max int) error {
	if v < min || v > max {
		return errors.Wrapf(ErrInvalid, "%s is %d, must be between %d and %d", name, v, min, max)
	}
	return nil
}

// Validate checks every option is within range.
func (c Config) Validate() error {
	for _, r := range []struct {
		name        string
		v, min, max int
	}{
		{"tile width", c.TileWidth, 8, 16},
		{"tile height", c.TileHeight, 8, 16},
		{"bpp", c.BPP, 1, 8},
		{"palettes", c.MaxPalettes, 1, 8},
		{"max tiles", c.MaxTiles, 1, 0x3ff},
		{"tile threshold", c.TileThreshold, 0, 0xffff},
		{"max retries", c.MaxRetries, 1, 64},
		{"tile multiplier", c.Multiplier, 1, 8},
		{"big tile threshold", c.BigTileThreshold, 0, 16},
		{"max big tiles", c.MaxBigTiles, 0, 16},
	} {
		if err := checkRange(r.name, r.v, r.min, r.max); err != nil {
			return err
		}
	}

	if c.TileWidth != 8 && c.TileWidth != 16 {
		return errors.Wrapf(ErrInvalid, "tile width is %d, must be 8 or 16", c.TileWidth)
	}
	if c.TileHeight != 8 && c.TileHeight != 16 {
		return errors.Wrapf(ErrInvalid, "tile height is %d, must be 8 or 16", c.TileHeight)
	}

	switch c.Multiplier {
	case 1, 2, 4, 8:
	default:
		return errors.Wrapf(ErrInvalid, "tile multiplier is %d, must be 1, 2, 4 or 8", c.Multiplier)
	}

	switch c.Mode {
	case Background:
		if c.Multiplier != 1 {
			return errors.Wrap(ErrInvalid, "tile multiplier is only supported in sprite mode")
		}
		if c.MirrorTilemapX || c.MirrorTilemapY {
			return errors.Wrap(ErrInvalid, "mirrored tilemaps are only supported in sprite mode")
		}
	case Sprite:
		if c.PartitionTilemap {
			return errors.Wrap(ErrInvalid, "partitioned tilemaps are only supported in bg mode")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown mode %d", int(c.Mode))
	}

	switch c.Quantizer {
	case MedianCut, NoDither, None:
	default:
		return errors.Wrapf(ErrInvalid, "unknown quantizer %d", int(c.Quantizer))
	}

	if c.ReferencePalette != nil {
		if len(c.ReferencePalette) == 0 {
			return errors.Wrap(ErrInvalid, "reference palette is empty")
		}
		for i, row := range c.ReferencePalette {
			if len(row) == 0 {
				return errors.Wrapf(ErrInvalid, "reference palette row %d is empty", i)
			}
		}
	}

	return nil
}
