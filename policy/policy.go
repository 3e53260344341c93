package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/reframe/model/expr"
)

// Execution modes recognised by the engine.
const (
	ModeAuto = "auto" // run every selected workflow (default)
	ModeDeny = "deny" // block all workflows
)

// Policy represents execution rules for a request.
//
//   - Mode controls the high-level behaviour (auto / deny).
//   - AllowList, BlockList filter workflow ids regardless of Mode.
//   - MissingPath controls how rules resolve absent paths.
//
// A nil *Policy runs everything with lenient paths.
type Policy struct {
	Mode        string
	AllowList   []string
	BlockList   []string
	MissingPath expr.MissingPath
}

// Config represents the serialisable form of a Policy.
type Config struct {
	Mode        string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList   []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList   []string `json:"block,omitempty" yaml:"block,omitempty"`
	MissingPath string   `json:"missingPath,omitempty" yaml:"missingPath,omitempty"`
}

// Validate checks config values
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Mode {
	case "", ModeAuto, ModeDeny:
	default:
		return fmt.Errorf("unsupported policy mode: %v", c.Mode)
	}
	if !expr.MissingPath(c.MissingPath).Valid() {
		return fmt.Errorf("unsupported missing path policy: %v", c.MissingPath)
	}
	return nil
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:        p.Mode,
		AllowList:   append([]string(nil), p.AllowList...),
		BlockList:   append([]string(nil), p.BlockList...),
		MissingPath: string(p.MissingPath),
	}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:        c.Mode,
		AllowList:   append([]string(nil), c.AllowList...),
		BlockList:   append([]string(nil), c.BlockList...),
		MissingPath: expr.MissingPath(c.MissingPath),
	}
}

// IsAllowed evaluates mode and allow/block lists for a workflow id. Matching is
// case-insensitive; the block list has priority.
func (p *Policy) IsAllowed(workflowID string) bool {
	if p == nil {
		return true
	}
	if p.Mode == ModeDeny {
		return false
	}
	normalized := strings.ToLower(workflowID)
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// EvalOptions returns rule evaluation options implied by the policy
func (p *Policy) EvalOptions() []expr.Option {
	if p == nil || p.MissingPath == "" {
		return nil
	}
	return []expr.Option{expr.WithMissingPath(p.MissingPath)}
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts policy, nil when absent.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
