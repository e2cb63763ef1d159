package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/sosicon/internal/parser"
	"github.com/beetlebugorg/sosicon/internal/psql"
	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

type sqlOptions struct {
	srid      int
	schema    string
	table     string
	batchSize int
	charset   string
	output    string
	load      bool
}

func newSQLCmd(root *rootOptions) *cobra.Command {
	opts := &sqlOptions{}

	cmd := &cobra.Command{
		Use:   "sql [files...]",
		Short: "Convert SOSI points to a PostGIS SQL dump",
		Long: `Collect every PUNKT with coordinates from the given files into one
table and write the statements that create and fill it.

With --load the statements are executed against DATABASE_URL in a single
transaction instead of being written out.`,
		Example: `  sosicon sql -o punkter.sql kommune.sos
  sosicon sql -o punkter.sql.zst *.sos
  sosicon sql --srid 25833 --schema kart --table bygning --load *.sos`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.srid, "srid", 0, "destination SRID (default from config)")
	f.StringVar(&opts.schema, "schema", "", "target schema")
	f.StringVar(&opts.table, "table", "", "target table")
	f.IntVar(&opts.batchSize, "batch-size", 0, "rows per INSERT statement")
	f.StringVar(&opts.charset, "charset", "", "client encoding of the dump")
	f.StringVarP(&opts.output, "output", "o", "", "output file, zstd compressed when it ends in .zst (default stdout)")
	f.BoolVar(&opts.load, "load", false, "execute the dump against DATABASE_URL")
	return cmd
}

func runSQL(cmd *cobra.Command, root *rootOptions, opts *sqlOptions, args []string) error {
	cfg := root.cfg.SQL
	flags := cmd.Flags()

	if flags.Changed("srid") {
		cfg.SRID = opts.srid
	}
	if flags.Changed("schema") {
		cfg.Schema = opts.schema
	}
	if flags.Changed("table") {
		cfg.Table = opts.table
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = opts.batchSize
	}
	if flags.Changed("charset") {
		cfg.Charset = opts.charset
	}

	cs, err := parser.LookupCharset(cfg.Charset)
	if err != nil {
		return err
	}
	dump, err := psql.NewDump(psql.Options{
		SRID:      cfg.SRID,
		Schema:    cfg.Schema,
		Table:     cfg.Table,
		BatchSize: cfg.BatchSize,
		Encoding:  cs.Encoding,
		Logger:    &root.log,
	})
	if err != nil {
		return err
	}

	for _, path := range args {
		doc, err := sosicon.Open(path, sosicon.DefaultParseOptions())
		if err != nil {
			return err
		}
		n := dump.Add(doc.Tree())
		root.log.Info().Str("path", path).Int("rows", n).Msg("Collected points")
	}

	if opts.load {
		if cfg.DatabaseURL == "" {
			return errors.New("--load needs DATABASE_URL or sql.database_url")
		}
		if err := psql.Load(cmd.Context(), cfg.DatabaseURL, dump); err != nil {
			return err
		}
		root.log.Info().Int("rows", dump.Rows()).Msg("Loaded")
		return nil
	}

	if opts.output == "" {
		_, err := dump.WriteTo(cmd.OutOrStdout())
		return err
	}
	return writeDump(opts.output, dump)
}

// writeDump renders dump into a temporary sibling of path and renames it
// into place. A path ending in .zst is zstd compressed.
func writeDump(path string, dump io.WriterTo) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	var w io.Writer = f
	var zw *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		if zw, err = zstd.NewWriter(f); err != nil {
			return err
		}
		w = zw
	}

	if _, err = dump.WriteTo(w); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
