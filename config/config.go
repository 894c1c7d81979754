// Package config loads engine and dataset defaults from a YAML file.
//
// The file is optional: Default returns a configuration that matches the
// engine's built-in defaults, and Load merges a file on top of it.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/robert-malhotra/go-dal/hdf5"
	"gopkg.in/yaml.v3"
)

// Config holds engine and dataset defaults.
type Config struct {
	// OffsetSize is the size in bytes of file addresses in new files
	// (2, 4 or 8). Default: 8
	OffsetSize int `yaml:"offset_size"`

	// LengthSize is the size in bytes of lengths in new files (2, 4 or 8).
	// Default: 8
	LengthSize int `yaml:"length_size"`

	// Locking enables advisory file locks while files are open.
	// Default: true
	Locking bool `yaml:"locking"`

	// DefaultEndianness is the byte order of new datasets.
	// Values: "native", "little", "big". Default: native
	DefaultEndianness string `yaml:"default_endianness"`

	// Log configures the logger returned by Logger.
	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: warn
	Level string `yaml:"level"`

	// Format is "text" or "json". Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		OffsetSize:        8,
		LengthSize:        8,
		Locking:           true,
		DefaultEndianness: "native",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path on top of Default and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of Default and validates the
// result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field for an accepted value.
func (c *Config) Validate() error {
	for name, v := range map[string]int{"offset_size": c.OffsetSize, "length_size": c.LengthSize} {
		if v != 2 && v != 4 && v != 8 {
			return fmt.Errorf("invalid %s %d: must be 2, 4 or 8", name, v)
		}
	}
	switch strings.ToLower(c.DefaultEndianness) {
	case "native", "little", "big":
	default:
		return fmt.Errorf("invalid default_endianness %q: must be native, little or big", c.DefaultEndianness)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// FileOptions returns the engine options for creating and opening files.
func (c *Config) FileOptions() []hdf5.FileOption {
	return []hdf5.FileOption{
		hdf5.WithOffsetSize(c.OffsetSize),
		hdf5.WithLengthSize(c.LengthSize),
		hdf5.WithLocking(c.Locking),
	}
}

// Endianness returns the byte order of DefaultEndianness, resolving
// "native" to the host order.
func (c *Config) Endianness() hdf5.ByteOrder {
	switch strings.ToLower(c.DefaultEndianness) {
	case "little":
		return hdf5.LittleEndian
	case "big":
		return hdf5.BigEndian
	}
	return hdf5.NativeOrder()
}

// Level returns the configured log level, slog.LevelWarn when unset or
// invalid.
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}
