package sosicon

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ConvertOptions configures ConvertFiles.
type ConvertOptions struct {
	// Workers is the number of files converted concurrently.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors causes conversion to continue when individual files fail.
	// Failed files are skipped and their errors collected.
	// When false, the first error cancels the remaining work.
	SkipErrors bool

	// Progress is an optional callback called after each file, successful
	// or not, with the number of files done so far.
	Progress func(done, total int)

	// ErrorLog is an optional writer for per-file error lines.
	ErrorLog io.Writer

	// OutputDir receives the output files. Empty writes next to each input.
	OutputDir string

	// SplitTypes writes one Shapefile set per element type, named
	// <base>_<type>, instead of a single set holding every type.
	SplitTypes bool

	Parse     ParseOptions
	Shapefile ShapefileOptions

	// Logger receives per-file log output. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConvertOptions returns convert options with sensible defaults.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Parse:      DefaultParseOptions(),
		Shapefile:  DefaultShapefileOptions(),
	}
}

// Result describes the output of one converted file.
type Result struct {
	Path    string   // input file
	Outputs []string // base paths written, without extension
	Records int      // records across all outputs
}

// ConvertFiles converts each SOSI file in paths to Shapefiles.
//
// Results are returned in input order; failed files have no entry. With
// SkipErrors, errors for failed files are collected and returned alongside
// the results. Without it, the first failure cancels outstanding work and
// is the only error returned.
//
// Every file in one call shares the same .dbf date.
func ConvertFiles(ctx context.Context, paths []string, opts ConvertOptions) ([]Result, []error) {
	if len(paths) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if opts.Shapefile.Now == nil {
		opts.Shapefile.Now = fixedClock(time.Now())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make([]*Result, len(paths))
	var (
		mu   sync.Mutex
		errs []error
		done int
	)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := convertFile(path, opts, log)

			mu.Lock()
			defer mu.Unlock()
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(paths))
			}
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("Conversion failed")
				if opts.ErrorLog != nil {
					fmt.Fprintf(opts.ErrorLog, "Error converting file: %v\n", err)
				}
				if opts.SkipErrors {
					errs = append(errs, err)
					return nil
				}
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return compact(results), []error{err}
	}
	return compact(results), errs
}

func compact(results []*Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// convertFile runs read, transform, encode and write for one input.
func convertFile(path string, opts ConvertOptions, log zerolog.Logger) (*Result, error) {
	start := time.Now()

	doc, err := Open(path, opts.Parse)
	if err != nil {
		return nil, err
	}

	base := outputBase(path, opts.OutputDir)
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, &StageError{Stage: StageWrite, Path: opts.OutputDir, Err: err}
		}
	}

	type job struct {
		base string
		opts ShapefileOptions
	}
	var jobs []job
	if opts.SplitTypes {
		for _, t := range opts.Shapefile.Types {
			o := opts.Shapefile
			o.Types = []string{t}
			jobs = append(jobs, job{base + typeSuffix(t), o})
		}
	} else {
		jobs = append(jobs, job{base, opts.Shapefile})
	}

	res := &Result{Path: path}
	for _, j := range jobs {
		sf, err := doc.Shapefile(j.opts)
		if err != nil {
			return nil, err
		}
		if err := WriteShapefile(sf, j.base); err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, j.base)
		res.Records += sf.RecordCount()
	}

	log.Info().
		Str("path", path).
		Int("features", doc.FeatureCount()).
		Int("records", res.Records).
		Dur("elapsed", time.Since(start)).
		Msg("Converted")
	return res, nil
}

// outputBase returns the output path for input without extension.
func outputBase(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}
