// Package config loads sosicon settings from a YAML file, SOSICON_*
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Shapefile ShapefileConfig `mapstructure:"shapefile"`
	SQL       SQLConfig       `mapstructure:"sql"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console, json
	File   string `mapstructure:"file"`   // rotated JSON log file, empty for stderr
}

// ShapefileConfig holds defaults for the shp command
type ShapefileConfig struct {
	Types         []string `mapstructure:"types"`
	Charset       string   `mapstructure:"charset"`
	OutputDir     string   `mapstructure:"output_dir"`
	Workers       int      `mapstructure:"workers"`
	MaxBufferSize int      `mapstructure:"max_buffer_size"`
	SplitTypes    bool     `mapstructure:"split_types"`
}

// SQLConfig holds defaults for the sql command
type SQLConfig struct {
	SRID        int    `mapstructure:"srid"`
	Schema      string `mapstructure:"schema"`
	Table       string `mapstructure:"table"`
	BatchSize   int    `mapstructure:"batch_size"`
	Charset     string `mapstructure:"charset"`
	DatabaseURL string `mapstructure:"database_url"`
}

// DefaultConfig returns a new configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Shapefile: ShapefileConfig{
			Types:   []string{"PUNKT"},
			Charset: "ISO8859-1",
			Workers: runtime.NumCPU(),
		},
		SQL: SQLConfig{
			SRID:      4326,
			Schema:    "sosicon",
			Table:     "point",
			BatchSize: 250000,
			Charset:   "ISO8859-1",
		},
	}
}

// Load loads configuration from file and environment variables.
//
// A .env file in the working directory is read first; variables already set
// in the environment take precedence over it. With an empty configPath,
// sosicon.yaml is looked up in the working directory and
// $HOME/.config/sosicon; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SOSICON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("sql.database_url", "SOSICON_SQL_DATABASE_URL", "DATABASE_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sosicon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sosicon")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.Log.Format)
	}
	if c.Shapefile.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Shapefile.Workers)
	}
	if c.SQL.BatchSize <= 0 {
		return fmt.Errorf("invalid sql batch size: %d", c.SQL.BatchSize)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("shapefile.types", defaults.Shapefile.Types)
	v.SetDefault("shapefile.charset", defaults.Shapefile.Charset)
	v.SetDefault("shapefile.output_dir", defaults.Shapefile.OutputDir)
	v.SetDefault("shapefile.workers", defaults.Shapefile.Workers)
	v.SetDefault("shapefile.max_buffer_size", defaults.Shapefile.MaxBufferSize)
	v.SetDefault("shapefile.split_types", defaults.Shapefile.SplitTypes)
	v.SetDefault("sql.srid", defaults.SQL.SRID)
	v.SetDefault("sql.schema", defaults.SQL.Schema)
	v.SetDefault("sql.table", defaults.SQL.Table)
	v.SetDefault("sql.batch_size", defaults.SQL.BatchSize)
	v.SetDefault("sql.charset", defaults.SQL.Charset)
	v.SetDefault("sql.database_url", defaults.SQL.DatabaseURL)
}
