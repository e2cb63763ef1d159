package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/beetlebugorg/sosicon/internal/config"
)

var version = "dev"

// rootOptions is shared by all subcommands. cfg and log are set by the
// root command's PersistentPreRunE.
type rootOptions struct {
	cfgFile   string
	logLevel  string
	logFormat string
	logFile   string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sosicon",
		Short: "Convert SOSI files to Shapefiles and PostGIS dumps",
		Long: `sosicon reads Norwegian SOSI vector files and writes ESRI Shapefiles
(.shp, .shx, .dbf, .cpg) or PostGIS SQL dumps.

Configuration:
  sosicon looks for configuration in:
  1. --config flag (explicit path)
  2. ./sosicon.yaml
  3. $HOME/.config/sosicon/sosicon.yaml

Environment Variables:
  SOSICON_<SECTION>_<KEY>  - overrides any configuration key
  DATABASE_URL             - PostGIS connection used by sql --load
  A .env file in the working directory is read as well.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./sosicon.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: console, json (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write JSON logs to a rotated file instead of stderr")

	cmd.AddCommand(newShpCmd(opts))
	cmd.AddCommand(newSQLCmd(opts))
	cmd.AddCommand(newInfoCmd(opts))
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = log
	return nil
}

// newLogger builds the command line logger. Console output is meant for
// terminals, json for log collectors. A log file is always JSON. Every line
// carries the run ID so concurrent conversions can be told apart.
func newLogger(w io.Writer, cfg config.LogConfig) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	out := w
	switch {
	case cfg.File != "":
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    32, // MB
			MaxBackups: 3,
			Compress:   true,
		}
	case cfg.Format == "console":
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
		}
	}
	return zerolog.New(out).Level(lvl).With().
		Timestamp().
		Str("app", "sosicon").
		Str("run", uuid.NewString()).
		Logger(), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
