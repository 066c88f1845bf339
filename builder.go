// File: tonic/builder.go
package tonic

import (
	"errors"
	"fmt"
	"log/slog"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully loaded *Config object and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// SetupFunc registers configurables on a freshly created Config. Setup runs
// before any configuration is loaded so that instanced keys can reference the
// registered functions.
type SetupFunc func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	opts       Options
	file       string
	flats      []FlatConfig
	args       []string
	setups     []SetupFunc
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		opts: DefaultOptions(),
	}
}

// WithStrict enables strict mode
func (b *Builder) WithStrict(strict bool) *Builder {
	b.opts.Strict = strict
	return b
}

// WithLogger sets the logger receiving debug records
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithSetup adds a registration step. Steps run in the order they are added.
func (b *Builder) WithSetup(fn SetupFunc) *Builder {
	if fn != nil {
		b.setups = append(b.setups, fn)
	}
	return b
}

// WithFile sets the configuration file path. A missing file is not an error.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFlat adds a flat configuration merged over the file contents
func (b *Builder) WithFlat(flat FlatConfig) *Builder {
	b.flats = append(b.flats, flat)
	return b
}

// WithArgs sets command-line overrides, applied last
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Config: setup steps, then the file (replacing), then
// flat configurations and command-line overrides (merging), then validators.
func (b *Builder) Build() (*Config, error) {
	cfg := NewWithOptions(b.opts)

	for _, setup := range b.setups {
		if err := setup(cfg); err != nil {
			return nil, fmt.Errorf("setup failed: %w", err)
		}
	}

	if b.file != "" {
		if err := cfg.Load(b.file); err != nil && !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
	}

	for _, flat := range b.flats {
		if err := cfg.Update(flat); err != nil {
			return nil, fmt.Errorf("failed to apply configuration: %w", err)
		}
	}

	if len(b.args) > 0 {
		if err := cfg.LoadArgs(b.args); err != nil {
			return nil, err
		}
	}

	for i, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed (validator %d): %w", i+1, err)
		}
	}

	return cfg, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("tonic: config build failed: %v", err))
	}
	return cfg
}
