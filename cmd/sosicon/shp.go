package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

type shpOptions struct {
	types         []string
	outputDir     string
	bbox          string
	bboxMargin    float64
	split         bool
	charset       string
	workers       int
	maxBufferSize int
}

func newShpCmd(root *rootOptions) *cobra.Command {
	opts := &shpOptions{}

	cmd := &cobra.Command{
		Use:   "shp [files...]",
		Short: "Convert SOSI files to Shapefiles",
		Long: `Convert each SOSI file to a Shapefile set named after the input.

Every element type given with -t is encoded into one record sequence. With
--split each type gets its own set, named <file>_<type>.`,
		Example: `  sosicon shp -t PUNKT kommune.sos
  sosicon shp -t KURVE -t FLATE --split -o shp/ *.sos
  sosicon shp --bbox 596000,6642000,598000,6644000 kommune.sos`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShp(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&opts.types, "type", "t", nil, "element types to encode: PUNKT, KURVE, FLATE, TEKST (default from config)")
	f.StringVarP(&opts.outputDir, "output", "o", "", "output directory (default next to each input)")
	f.StringVar(&opts.bbox, "bbox", "", "only encode features intersecting minEast,minNorth,maxEast,maxNorth")
	f.Float64Var(&opts.bboxMargin, "bbox-margin", 0, "grow --bbox by this distance on every side")
	f.BoolVar(&opts.split, "split", false, "write one Shapefile set per element type")
	f.StringVar(&opts.charset, "charset", "", "attribute charset for .dbf files")
	f.IntVar(&opts.workers, "workers", 0, "files converted in parallel")
	f.IntVar(&opts.maxBufferSize, "max-buffer", 0, "maximum size of each output file in bytes")
	return cmd
}

func runShp(cmd *cobra.Command, root *rootOptions, opts *shpOptions, args []string) error {
	cfg := root.cfg.Shapefile
	flags := cmd.Flags()

	convert := sosicon.DefaultConvertOptions()
	convert.Logger = &root.log
	convert.Workers = cfg.Workers
	convert.OutputDir = cfg.OutputDir
	convert.SplitTypes = cfg.SplitTypes
	convert.Shapefile.Types = cfg.Types
	convert.Shapefile.Charset = cfg.Charset
	convert.Shapefile.MaxBufferSize = cfg.MaxBufferSize
	convert.Shapefile.Logger = &root.log

	if flags.Changed("type") {
		convert.Shapefile.Types = opts.types
	}
	if flags.Changed("output") {
		convert.OutputDir = opts.outputDir
	}
	if flags.Changed("split") {
		convert.SplitTypes = opts.split
	}
	if flags.Changed("charset") {
		convert.Shapefile.Charset = opts.charset
	}
	if flags.Changed("workers") {
		convert.Workers = opts.workers
	}
	if flags.Changed("max-buffer") {
		convert.Shapefile.MaxBufferSize = opts.maxBufferSize
	}
	if opts.bbox != "" {
		b, err := sosicon.ParseBounds(opts.bbox)
		if err != nil {
			return err
		}
		if opts.bboxMargin != 0 {
			b = b.Expand(opts.bboxMargin)
		}
		convert.Shapefile.Bounds = &b
	}

	results, errs := sosicon.ConvertFiles(cmd.Context(), args, convert)

	out := cmd.OutOrStdout()
	for _, r := range results {
		for _, base := range r.Outputs {
			fmt.Fprintf(out, "%s -> %s.shp\n", r.Path, base)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(args), errs[0])
	}
	return nil
}
