package main

import (
	"bytes"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/gracon"
	"github.com/bodgit/gracon/color"
	"github.com/bodgit/gracon/config"
	"github.com/bodgit/gracon/image"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func flags() []cli.Flag {
	d := config.Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "prefix for output files, defaults to the first input without its extension",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			EnvVars: []string{"GRACON_MODE"},
			Value:   d.Mode.String(),
			Usage:   "tile mode, bg or sprite",
		},
		&cli.IntFlag{
			Name:    "bpp",
			Aliases: []string{"b"},
			EnvVars: []string{"GRACON_BPP"},
			Value:   d.BPP,
			Usage:   "bits per pixel",
		},
		&cli.IntFlag{
			Name:  "tile-width",
			Value: d.TileWidth,
			Usage: "tile width, 8 or 16",
		},
		&cli.IntFlag{
			Name:  "tile-height",
			Value: d.TileHeight,
			Usage: "tile height, 8 or 16",
		},
		&cli.IntFlag{
			Name:    "palettes",
			Aliases: []string{"p"},
			EnvVars: []string{"GRACON_PALETTES"},
			Value:   d.MaxPalettes,
			Usage:   "maximum number of palettes",
		},
		&cli.IntFlag{
			Name:    "max-tiles",
			EnvVars: []string{"GRACON_MAX_TILES"},
			Value:   d.MaxTiles,
			Usage:   "maximum number of tiles",
		},
		&cli.StringFlag{
			Name:    "transparent",
			Aliases: []string{"t"},
			EnvVars: []string{"GRACON_TRANSPARENT"},
			Value:   fmt.Sprintf("%#06x", d.Transparent.Value()),
			Usage:   "transparent color as 0xRRGGBB",
		},
		&cli.IntFlag{
			Name:  "threshold",
			Value: d.TileThreshold,
			Usage: "starting error allowed between two tiles",
		},
		&cli.IntFlag{
			Name:    "max-retries",
			EnvVars: []string{"GRACON_MAX_RETRIES"},
			Value:   d.MaxRetries,
			Usage:   "how many times the threshold may be raised",
		},
		&cli.BoolFlag{
			Name:  "no-optimize",
			Usage: "do not deduplicate tiles",
		},
		&cli.IntFlag{
			Name:  "multiplier",
			Value: d.Multiplier,
			Usage: "big sprite tile multiplier",
		},
		&cli.IntFlag{
			Name:  "big-threshold",
			Value: d.BigTileThreshold,
			Usage: "missing tiles allowed in a big sprite tile",
		},
		&cli.IntFlag{
			Name:  "max-big-tiles",
			Value: d.MaxBigTiles,
			Usage: "maximum number of big sprite tiles per frame",
		},
		&cli.StringFlag{
			Name:    "reference",
			Aliases: []string{"r"},
			Usage:   "image whose rows are used as the palettes",
		},
		&cli.BoolFlag{
			Name:  "force-palette",
			Usage: "map colors missing from the reference palette to transparent",
		},
		&cli.BoolFlag{
			Name:  "partition",
			Usage: "split the tilemap into 32x32 screens",
		},
		&cli.BoolFlag{
			Name:  "mirror-x",
			Usage: "mirror the sprite tilemap horizontally",
		},
		&cli.BoolFlag{
			Name:  "mirror-y",
			Usage: "mirror the sprite tilemap vertically",
		},
		&cli.StringFlag{
			Name:    "quantizer",
			Aliases: []string{"q"},
			EnvVars: []string{"GRACON_QUANTIZER"},
			Value:   d.Quantizer.String(),
			Usage:   "quantizer used when the image has too many colors, median, nodither or none",
		},
		&cli.BoolFlag{
			Name:    "compress",
			Aliases: []string{"z"},
			EnvVars: []string{"GRACON_COMPRESS"},
			Usage:   "compress every output file with zstd",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}
}

func parseConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()

	mode, err := config.ParseMode(c.String("mode"))
	if err != nil {
		return cfg, err
	}
	quantizer, err := config.ParseQuantizer(c.String("quantizer"))
	if err != nil {
		return cfg, err
	}
	transparent, err := strconv.ParseUint(c.String("transparent"), 0, 24)
	if err != nil {
		return cfg, errors.Wrapf(config.ErrInvalid, "transparent color %q", c.String("transparent"))
	}

	cfg.Mode = mode
	cfg.Quantizer = quantizer
	cfg.Transparent = color.RGB(uint32(transparent))
	cfg.BPP = c.Int("bpp")
	cfg.TileWidth = c.Int("tile-width")
	cfg.TileHeight = c.Int("tile-height")
	cfg.MaxPalettes = c.Int("palettes")
	cfg.MaxTiles = c.Int("max-tiles")
	cfg.TileThreshold = c.Int("threshold")
	cfg.MaxRetries = c.Int("max-retries")
	cfg.Optimize = !c.Bool("no-optimize")
	cfg.Multiplier = c.Int("multiplier")
	cfg.BigTileThreshold = c.Int("big-threshold")
	cfg.MaxBigTiles = c.Int("max-big-tiles")
	cfg.ForcePalette = c.Bool("force-palette")
	cfg.PartitionTilemap = c.Bool("partition")
	cfg.MirrorTilemapX = c.Bool("mirror-x")
	cfg.MirrorTilemapY = c.Bool("mirror-y")

	if file := c.String("reference"); file != "" {
		rows, err := image.OpenPaletteRows(file)
		if err != nil {
			return cfg, err
		}
		cfg.ReferencePalette = rows
	}

	return cfg, cfg.Validate()
}

type zstdFile struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstdFile) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}

func create(name string, compress bool) (io.WriteCloser, error) {
	if !compress {
		return os.Create(name)
	}

	f, err := os.Create(name + ".zst")
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{enc, f}, nil
}

func writeFile(name string, compress bool, b []byte) error {
	w, err := create(name, compress)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return errors.Wrap(err, name)
	}
	return w.Close()
}

type output struct {
	name string
	data []byte
}

type job struct {
	c       *cli.Context
	cfg     config.Config
	logger  *log.Logger
	prefix  string
	outputs []output
}

func newJob(c *cli.Context) (*job, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	cfg, err := parseConfig(c)
	if err != nil {
		return nil, err
	}

	prefix := c.String("output")
	if prefix == "" {
		first := c.Args().First()
		prefix = strings.TrimSuffix(first, filepath.Ext(first))
	}

	return &job{
		c:      c,
		cfg:    cfg,
		logger: logger,
		prefix: prefix,
	}, nil
}

func (j *job) compile(files []string) (*gracon.Result, error) {
	frames := make([]*image.Image, 0, len(files))
	for _, file := range files {
		m, err := image.Open(file, j.cfg)
		if err != nil {
			return nil, err
		}
		frames = append(frames, m)
	}

	compiler, err := gracon.New(j.cfg, j.logger)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(frames)
}

// write encodes an output file in memory, nothing is created until flush
func (j *job) write(name string, fn func(io.Writer) error) error {
	b := new(bytes.Buffer)
	if err := fn(b); err != nil {
		return errors.Wrap(err, name)
	}
	j.outputs = append(j.outputs, output{name, b.Bytes()})
	return nil
}

func (j *job) flush() error {
	for _, o := range j.outputs {
		if err := writeFile(o.name, j.c.Bool("compress"), o.data); err != nil {
			return err
		}
		j.logger.Println("Wrote", o.name)
	}
	return nil
}

// writeFrame queues the tiles and tilemaps of frame i using prefix
func (j *job) writeFrame(r *gracon.Result, i int, prefix string) error {
	// Static tiles are all written with the first frame
	if !j.cfg.StaticTiles || i == 0 {
		if err := j.write(prefix+".tiles", func(w io.Writer) error {
			return r.EncodeTiles(w, i)
		}); err != nil {
			return err
		}
	}

	if err := j.write(prefix+".tilemap", func(w io.Writer) error {
		return r.EncodeTilemap(w, i)
	}); err != nil {
		return err
	}

	if j.cfg.Mode != config.Sprite || r.Frames[i].Big.Len() == 0 {
		return nil
	}

	if err := j.write(prefix+".bigtiles", func(w io.Writer) error {
		return r.EncodeBigTiles(w, i)
	}); err != nil {
		return err
	}

	return j.write(prefix+".bigtilemap", func(w io.Writer) error {
		return r.EncodeBigTilemap(w, i, j.cfg.MirrorTilemapX, j.cfg.MirrorTilemapY)
	})
}

func (j *job) report(r *gracon.Result) {
	s := r.Stats()
	j.logger.Printf("%d frames, %d of %d tiles kept, %d big tiles, %d of %d palettes kept\n", s.Frames, s.RealTiles, s.Tiles, s.BigTiles, s.RealPalettes, s.Palettes)
	if s.Retries > 0 {
		j.logger.Printf("Tile threshold raised %d times to %d\n", s.Retries, s.Threshold)
	}
}

func gfx(c *cli.Context) error {
	if c.NArg() != 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	j, err := newJob(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	r, err := j.compile(c.Args().Slice())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := j.write(j.prefix+".palette", r.EncodePalettes); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := j.writeFrame(r, 0, j.prefix); err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := j.flush(); err != nil {
		return cli.NewExitError(err, 1)
	}

	j.report(r)

	return nil
}

func animation(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	j, err := newJob(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	j.cfg.StaticTiles = c.Bool("static")

	r, err := j.compile(c.Args().Slice())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := j.write(j.prefix+".palette", r.EncodePalettes); err != nil {
		return cli.NewExitError(err, 1)
	}
	for i := range r.Frames {
		if err := j.writeFrame(r, i, fmt.Sprintf("%s.%03d", j.prefix, i)); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	if err := j.flush(); err != nil {
		return cli.NewExitError(err, 1)
	}

	j.report(r)

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "gracon"
	app.Usage = "SNES tile, palette and tilemap compiler"
	app.Version = "1.0.0"

	app.Commands = []*cli.Command{
		{
			Name:        "gfx",
			Usage:       "Compile a single image",
			Description: "Writes <output>.tiles, <output>.palette and <output>.tilemap, plus <output>.bigtiles and <output>.bigtilemap for big sprite tiles.",
			ArgsUsage:   "FILE",
			Flags:       flags(),
			Action:      gfx,
		},
		{
			Name:        "animation",
			Usage:       "Compile every frame of an animation with shared palettes",
			Description: "Frames are compiled in argument order. Writes one <output>.palette and <output>.NNN.tiles and <output>.NNN.tilemap per frame.",
			ArgsUsage:   "FILE...",
			Flags: append(flags(), &cli.BoolFlag{
				Name:  "static",
				Usage: "share one set of tiles between every frame, written with the first frame",
			}),
			Action: animation,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
