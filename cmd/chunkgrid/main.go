package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
	"github.com/janelia-flyem/chunkgrid/pipeline"
	"github.com/janelia-flyem/chunkgrid/schematic"
)

const helpMessage = `
chunkgrid selects a pseudo-random cluster of chunk coordinates, joins them with a minimum
spanning tree of L-shaped pathways, and writes the result as a grayscale PNG and as a
gzip-compressed litematic schematic.

Usage: chunkgrid [options]

	Settings come from the defaults, then the optional TOML file, then any flags given.

	    --config      =string   TOML configuration file.
	    --image       =string   Output PNG path ("" skips the image).
	    --schematic   =string   Output litematic path ("" skips the schematic).
	    --offset      =string   Scan origin as "x,z".
	    --size        =number   Number of chunks in the cluster.
	    --width       =number   Number of chunks scanned along z per column.
	    --hash-space  =number   Power-of-two size of the hash space.
	    --max-columns =number   Maximum number of columns scanned.
	    --dims        =number   Placement dimensions, 2 or 3.
	    --packing     =string   Block state packing, "exact" or "legacy".
	    --workers     =number   Goroutines used to build the spanning tree (0 = all CPUs).
	    --verbose     (flag)    Log at debug level.
	-h, --help        (flag)    Show help message.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "chunkgrid: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("chunkgrid", pflag.ContinueOnError)
	flagSet.Usage = func() { fmt.Print(helpMessage) }

	configFile := flagSet.String("config", "", "")
	image := flagSet.String("image", "", "")
	schematicPath := flagSet.String("schematic", "", "")
	offset := flagSet.String("offset", "", "")
	size := flagSet.Int("size", 0, "")
	width := flagSet.Int32("width", 0, "")
	hashSpace := flagSet.Uint64("hash-space", 0, "")
	maxColumns := flagSet.Int32("max-columns", 0, "")
	dims := flagSet.Int("dims", 0, "")
	packing := flagSet.String("packing", "", "")
	workers := flagSet.Int("workers", 0, "")
	verbose := flagSet.Bool("verbose", false, "")
	showHelp := flagSet.BoolP("help", "h", false, "")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showHelp {
		flagSet.Usage()
		return nil
	}
	if flagSet.NArg() != 0 {
		flagSet.Usage()
		return fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	if *verbose {
		chunkgrid.SetLogMode(chunkgrid.DebugMode)
	}

	cfg := pipeline.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(*configFile); err != nil {
			return err
		}
	}

	changed := flagSet.Changed
	if changed("image") {
		cfg.Output.Image = *image
	}
	if changed("schematic") {
		cfg.Output.Schematic = *schematicPath
	}
	if changed("offset") {
		pt, err := chunkgrid.StringToPoint2d(*offset, ",")
		if err != nil {
			return fmt.Errorf("bad --offset %q: %v: %w", *offset, err, chunkgrid.ErrBadConfig)
		}
		cfg.Cluster.Offset = pt
	}
	if changed("size") {
		cfg.Cluster.Size = *size
	}
	if changed("width") {
		cfg.Cluster.ScanWidth = *width
	}
	if changed("hash-space") {
		cfg.Cluster.HashSpace = *hashSpace
	}
	if changed("max-columns") {
		cfg.Cluster.MaxColumns = *maxColumns
	}
	if changed("dims") {
		cfg.Placement.Dimensions = *dims
	}
	if changed("packing") {
		mode, err := schematic.ParsePackingMode(*packing)
		if err != nil {
			return fmt.Errorf("%v: %w", err, chunkgrid.ErrBadConfig)
		}
		cfg.Schematic.Packing = mode
	}
	if changed("workers") {
		cfg.Tree.Workers = *workers
	}

	cfg.Logging.SetLogger()
	defer chunkgrid.Shutdown()

	result, err := pipeline.Run(cfg)
	if err != nil {
		return err
	}
	if _, err := pipeline.WriteOutputs(cfg.Output, result); err != nil {
		return err
	}
	return nil
}
