package gracon

import (
	"io"

	"github.com/bodgit/gracon/config"
	"github.com/bodgit/gracon/palette"
	"github.com/bodgit/gracon/tile"
	"github.com/bodgit/gracon/tilemap"
	"github.com/pkg/errors"
)

// Frame is the compiled form of one input image.
type Frame struct {
	Width, Height int

	// Tiles holds the tiles of the frame. With static tiles it is shared
	// by every frame and only part of it belongs to this frame.
	Tiles *tile.Set
	// Big holds the big sprite tiles of the frame.
	Big *tile.Set

	set        int
	start, end int
}

// Normal returns the tiles placed by this frame, in extraction order.
func (f *Frame) Normal() []*tile.Tile {
	return f.Tiles.Tiles[f.start:f.end]
}

// Stats summarizes a compile.
type Stats struct {
	Frames       int
	Tiles        int
	RealTiles    int
	BigTiles     int
	Palettes     int
	RealPalettes int
	// Threshold is the tile threshold that brought the tiles within
	// budget and Retries is how many times it was raised.
	Threshold int
	Retries   int
}

// Result holds everything produced by a successful compile.
type Result struct {
	cfg      config.Config
	Palettes *palette.Set
	Frames   []*Frame
	stats    Stats
}

// check builds the tilemaps of every frame, and in sprite mode every mirrored
// variant, to catch values that do not fit their field
func (r *Result) check() error {
	for i, f := range r.Frames {
		var err error
		switch r.cfg.Mode {
		case config.Sprite:
			err = r.checkSprites(f)
		default:
			cols, rows := f.Width/r.cfg.TileWidth, f.Height/r.cfg.TileHeight
			_, err = tilemap.Background(f.Normal(), f.Tiles, r.Palettes, cols, rows, r.cfg.PartitionTilemap)
		}
		if err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
	}
	return nil
}

func (r *Result) checkSprites(f *Frame) error {
	for _, m := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
		if _, err := tilemap.Sprite(f.Normal(), f.Tiles, r.Palettes, f.Width, f.Height, m[0], m[1]); err != nil {
			return err
		}
		if _, err := tilemap.Sprite(f.Big.Tiles, f.Big, r.Palettes, f.Width, f.Height, m[0], m[1]); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the statistics of the compile.
func (r *Result) Stats() Stats {
	return r.stats
}

func (r *Result) frame(i int) (*Frame, error) {
	if i < 0 || i >= len(r.Frames) {
		return nil, errors.Errorf("gracon: no frame %d", i)
	}
	return r.Frames[i], nil
}

// EncodeTiles writes the real tiles of frame i to w as bitplanes. With
// static tiles every tile is written with frame 0 and nothing with the
// other frames.
func (r *Result) EncodeTiles(w io.Writer, i int) error {
	f, err := r.frame(i)
	if err != nil {
		return err
	}
	if r.cfg.StaticTiles && i > 0 {
		return nil
	}
	return tile.Encode(w, f.Tiles, r.cfg)
}

// EncodeBigTiles writes the big tiles of frame i to w as bitplanes.
func (r *Result) EncodeBigTiles(w io.Writer, i int) error {
	f, err := r.frame(i)
	if err != nil {
		return err
	}
	return tile.EncodeBig(w, f.Big, r.cfg)
}

// EncodePalettes writes the real palettes to w.
func (r *Result) EncodePalettes(w io.Writer) error {
	return palette.Encode(w, r.Palettes, r.cfg.BPP)
}

// EncodeTilemap writes the tilemap of frame i to w. In sprite mode this is
// the sprite tilemap of the normal tiles, mirrored as configured.
func (r *Result) EncodeTilemap(w io.Writer, i int) error {
	f, err := r.frame(i)
	if err != nil {
		return err
	}
	if r.cfg.Mode == config.Sprite {
		return r.EncodeSpriteTilemap(w, i, r.cfg.MirrorTilemapX, r.cfg.MirrorTilemapY)
	}
	cols, rows := f.Width/r.cfg.TileWidth, f.Height/r.cfg.TileHeight
	return tilemap.WriteBackground(w, f.Normal(), f.Tiles, r.Palettes, cols, rows, r.cfg.PartitionTilemap)
}

// EncodeSpriteTilemap writes the sprite tilemap of the normal tiles of frame
// i to w, optionally mirrored.
func (r *Result) EncodeSpriteTilemap(w io.Writer, i int, mirrorX, mirrorY bool) error {
	f, err := r.frame(i)
	if err != nil {
		return err
	}
	return tilemap.WriteSprite(w, f.Normal(), f.Tiles, r.Palettes, f.Width, f.Height, mirrorX, mirrorY)
}

// EncodeBigTilemap writes the sprite tilemap of the big tiles of frame i to
// w, optionally mirrored.
func (r *Result) EncodeBigTilemap(w io.Writer, i int, mirrorX, mirrorY bool) error {
	f, err := r.frame(i)
	if err != nil {
		return err
	}
	return tilemap.WriteSprite(w, f.Big.Tiles, f.Big, r.Palettes, f.Width, f.Height, mirrorX, mirrorY)
}
