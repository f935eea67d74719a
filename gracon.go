/*
Package gracon is a library for compiling images into SNES tiles, palettes
and tilemaps.

A Compiler takes every frame of an animation, or a single image, and
produces one global set of palettes shared by all frames plus the tiles and
tilemap of each frame.
*/
package gracon

import (
	"log"

	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/bodgit/gracon/image"
	"github.com/bodgit/gracon/palette"
	"github.com/bodgit/gracon/tile"
	"github.com/pkg/errors"
)

const (
	// maxSprites is the number of sprites the hardware can show at once.
	maxSprites = 128
	// maxSpriteTiles is the number of tiles a sprite can address.
	maxSpriteTiles = 0x200
)

var (
	// ErrNoFrames is returned by Compile when there is nothing to do.
	ErrNoFrames = errors.New("gracon: no frames")
	// ErrTileBudget is returned when the tiles cannot be reduced to the
	// configured maximum.
	ErrTileBudget = errors.New("gracon: too many tiles")
	// ErrTooManySprites is returned when a frame needs more sprites than
	// the hardware provides.
	ErrTooManySprites = errors.New("gracon: too many sprites")
)

// Compiler compiles frames using a fixed configuration.
type Compiler struct {
	cfg    config.Config
	logger *log.Logger
}

// New returns a Compiler for cfg, which is validated first.
func New(cfg config.Config, logger *log.Logger) (*Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Compiler{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// maxTiles is the tile budget of every set
func (c *Compiler) maxTiles() int {
	if c.cfg.Mode == config.Sprite && c.cfg.MaxTiles > maxSpriteTiles {
		return maxSpriteTiles
	}
	return c.cfg.MaxTiles
}

func (c *Compiler) extract(frames []*image.Image) ([]*Frame, error) {
	out := make([]*Frame, 0, len(frames))
	for i, m := range frames {
		f := &Frame{
			Width:  m.Width,
			Height: m.Height,
		}

		switch c.cfg.Mode {
		case config.Sprite:
			normal, big := tile.Sprite(m, i, c.cfg)
			if n := len(normal) + len(big); n > maxSprites {
				return nil, errors.Wrapf(ErrTooManySprites, "frame %d needs %d sprites, maximum is %d", i, n, maxSprites)
			}
			f.Tiles = tile.NewSet(normal)
			f.Big = tile.NewSet(big)
		default:
			f.Tiles = tile.NewSet(tile.Background(m, i, c.cfg))
			f.Big = tile.NewSet()
		}
		f.end = f.Tiles.Len()

		c.logger.Printf("Frame %d: %d tiles, %d big tiles\n", i, f.Tiles.Len(), f.Big.Len())

		out = append(out, f)
	}
	return out, nil
}

func (c *Compiler) palettes(frames []*Frame) (*palette.Set, error) {
	if c.cfg.ReferencePalette != nil {
		s, err := palette.FromReference(c.cfg.ReferencePalette, c.cfg)
		if err != nil {
			return nil, err
		}
		c.logger.Printf("Using %d reference palettes\n", len(s.Real()))
		return s, nil
	}

	var local [][]color.Color
	for _, f := range frames {
		local = append(local, f.Tiles.LocalPalettes()...)
		local = append(local, f.Big.LocalPalettes()...)
	}

	s, err := palette.Synthesize(local, c.cfg)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Synthesized %d palettes from %d tiles\n", s.Len(), len(local))
	return s, nil
}

// Compile extracts, palettizes and deduplicates the tiles of every frame.
// All frames share one set of palettes. With StaticTiles set the tiles of
// every frame are deduplicated together and written once.
//
// Every tilemap is built once before returning so a Result that is returned
// can always be encoded.
func (c *Compiler) Compile(frames []*image.Image) (*Result, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	fs, err := c.extract(frames)
	if err != nil {
		return nil, err
	}

	palettes, err := c.palettes(fs)
	if err != nil {
		return nil, err
	}
	palettes.AssignOutIDs()

	var sets []*tile.Set
	if c.cfg.StaticTiles {
		lists := make([][]*tile.Tile, 0, len(fs))
		start := 0
		for _, f := range fs {
			lists = append(lists, f.Tiles.Tiles)
			f.start, f.end = start, start+f.Tiles.Len()
			start = f.end
		}
		sets = append(sets, tile.NewSet(lists...))
	} else {
		for i, f := range fs {
			f.set = i
			sets = append(sets, f.Tiles)
		}
	}

	work := append([]*tile.Set(nil), sets...)
	for _, f := range fs {
		work = append(work, f.Big)
	}
	if err := c.forEachSet(work, func(s *tile.Set) error {
		return tile.Palettize(s, palettes, c.cfg)
	}); err != nil {
		return nil, err
	}

	deduped, threshold, retries, err := c.dedup(sets)
	if err != nil {
		return nil, err
	}

	r := &Result{
		cfg:      c.cfg,
		Palettes: palettes,
		Frames:   fs,
	}
	for _, f := range fs {
		f.Tiles = deduped[f.set]
		f.Big.AssignOutIDs()
		r.stats.BigTiles += f.Big.Len()
	}
	for _, s := range deduped {
		r.stats.Tiles += s.Len()
		r.stats.RealTiles += s.AssignOutIDs()
	}
	r.stats.Frames = len(fs)
	r.stats.Palettes = palettes.Len()
	r.stats.RealPalettes = len(palettes.Real())
	r.stats.Threshold = threshold
	r.stats.Retries = retries

	if err := r.check(); err != nil {
		return nil, err
	}

	c.logger.Printf("Compiled %d frames: %d of %d tiles, %d palettes\n", r.stats.Frames, r.stats.RealTiles, r.stats.Tiles, r.stats.RealPalettes)

	return r, nil
}
