package dal

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/config"
	"github.com/robert-malhotra/go-dal/hdf5"
)

// Option configures a File.
type Option func(*options) error

type options struct {
	endianness Endianness
	fileOpts   []hdf5.FileOption
}

// WithEndianness sets the default byte order reported by File.Endianness.
func WithEndianness(e Endianness) Option {
	return func(o *options) error {
		if e < Native || e > Big {
			return fmt.Errorf("unknown endianness %d", e)
		}
		o.endianness = e
		return nil
	}
}

// WithFileOptions passes engine options through to file creation and
// opening.
func WithFileOptions(opts ...hdf5.FileOption) Option {
	return func(o *options) error {
		o.fileOpts = append(o.fileOpts, opts...)
		return nil
	}
}

// WithConfig applies the engine options and default endianness of cfg.
// Logging is process wide and stays with the caller: SetLogger(cfg.Logger(w)).
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e, err := ParseEndianness(cfg.DefaultEndianness)
		if err != nil {
			return err
		}
		o.endianness = e
		o.fileOpts = append(o.fileOpts, cfg.FileOptions()...)
		return nil
	}
}
