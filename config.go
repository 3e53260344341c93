package reframe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/reframe/internal/logging"
	"github.com/viant/reframe/model/expr"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/service/dao/record/fs"
	"github.com/viant/reframe/service/dao/record/memory"
	"github.com/viant/reframe/service/meta"
)

// Archive kinds
const (
	ArchiveMemory = "memory"
	ArchiveFs     = "fs"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from YAML or JSON with ${env.X} expansion, see LoadConfig.
type Config struct {
	// Package is the package descriptor URL loaded by NewFromConfig
	Package string         `json:"package,omitempty" yaml:"package,omitempty"`
	Timeout time.Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Policy  policy.Config  `json:"policy" yaml:"policy"`
	Archive ArchiveConfig  `json:"archive" yaml:"archive"`
	Logging logging.Config `json:"logging" yaml:"logging"`
	Tracing TracingConfig  `json:"tracing" yaml:"tracing"`
}

// ArchiveConfig selects the request record store, empty kind disables it
type ArchiveConfig struct {
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// TracingConfig enables the stdout/file span exporter
type TracingConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultConfig returns a Config populated with engine defaults. Callers may
// modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Policy:  policy.Config{Mode: policy.ModeAuto, MissingPath: string(expr.MissingLenient)},
		Logging: logging.Config{Environment: logging.EnvironmentProduction, Level: "info"},
		Tracing: TracingConfig{Service: "reframe"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be >= 0"))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	switch c.Archive.Kind {
	case "", ArchiveMemory:
	case ArchiveFs:
		if c.Archive.BaseURL == "" {
			errs = append(errs, fmt.Errorf("archive: baseURL is required for fs archive"))
		}
	default:
		errs = append(errs, fmt.Errorf("archive: unsupported kind %q", c.Archive.Kind))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML or JSON config on top of DefaultConfig
func LoadConfig(ctx context.Context, URL string, options ...meta.Option) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(afs.New(), "", options...).LoadInto(ctx, URL, ret); err != nil {
		return nil, err
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}

// NewFromConfig builds a service from config, options are applied after the
// config derived ones. When config names a package it is loaded.
func NewFromConfig(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger, _, err := logging.New(&config.Logging)
	if err != nil {
		return nil, err
	}
	configured := []Option{
		WithLogger(logger),
		WithTimeout(config.Timeout),
		WithPolicy(policy.FromConfig(&config.Policy)),
	}
	switch config.Archive.Kind {
	case ArchiveMemory:
		configured = append(configured, WithArchive(memory.New()))
	case ArchiveFs:
		archive, err := fs.New(afs.New(), config.Archive.BaseURL, logger)
		if err != nil {
			return nil, err
		}
		configured = append(configured, WithArchive(archive))
	}
	if config.Tracing.Enabled {
		configured = append(configured, WithTracing(config.Tracing.Service, Version, config.Tracing.Output))
	}
	ret := New(append(configured, options...)...)
	if config.Package != "" {
		if _, err = ret.Runtime().Load(ctx, config.Package); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
