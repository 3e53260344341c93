// Package logging builds the engine zap logger and correlates log lines with
// the active trace span.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment controls the baseline logger profile.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
	EnvironmentLocal       Environment = "local"
)

// Config contains logger initialization inputs.
type Config struct {
	Environment Environment `json:"environment,omitempty" yaml:"environment,omitempty"`
	Level       string      `json:"level,omitempty" yaml:"level,omitempty"`
	OutputPaths []string    `json:"outputPaths,omitempty" yaml:"outputPaths,omitempty"`
}

// Validate checks environment and level
func (c *Config) Validate() error {
	switch c.Environment {
	case "", EnvironmentProduction, EnvironmentDevelopment, EnvironmentLocal:
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}
	if _, err := resolveLevel(c); err != nil {
		return err
	}
	return nil
}

// New creates a structured logger and returns it with a runtime-adjustable level handle.
func New(cfg *Config) (*zap.Logger, zap.AtomicLevel, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("invalid logging config: %w", err)
	}
	level, _ := resolveLevel(cfg)
	baseConfig := buildConfigByEnvironment(cfg.Environment)
	baseConfig.Level = level
	baseConfig.DisableStacktrace = true
	if len(cfg.OutputPaths) > 0 {
		baseConfig.OutputPaths = cfg.OutputPaths
	}
	built, err := baseConfig.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to build logger: %w", err)
	}
	return built, level, nil
}

func resolveLevel(cfg *Config) (zap.AtomicLevel, error) {
	if strings.TrimSpace(cfg.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(cfg.Level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", cfg.Level, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}
	if cfg.Environment == EnvironmentDevelopment || cfg.Environment == EnvironmentLocal {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}

func buildConfigByEnvironment(environment Environment) zap.Config {
	if environment == EnvironmentDevelopment || environment == EnvironmentLocal {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// WithSpan appends trace_id and span_id of the span active in ctx
func WithSpan(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	if ctx == nil {
		return logger
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return logger.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return logger
}
