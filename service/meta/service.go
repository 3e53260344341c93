// Package meta loads package resources (descriptors, indexes, workflows, tables
// and fixtures) through afs so that file://, mem://, embed:// and cloud URLs are
// all supported. YAML and JSON documents decode into ordered structured values.
package meta

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/reframe/internal/yml"
	"github.com/viant/reframe/model/value"
	"gopkg.in/yaml.v3"
)

// Service loads package resources
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
	lookup  func(string) string
}

// URL resolves a location against the base URL, absolute URLs are returned as is
func (s *Service) URL(location string) string {
	if location == "" {
		return s.baseURL
	}
	if s.baseURL == "" || !url.IsRelative(location) {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Resolve resolves a location relative to the parent folder of parentURL
func (s *Service) Resolve(parentURL, location string) string {
	if !url.IsRelative(location) {
		return location
	}
	parent, _ := url.Split(s.URL(parentURL), file.Scheme)
	return url.Join(parent, location)
}

// Download returns raw resource content
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.URL(URL), s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	return data, nil
}

// Load downloads a YAML or JSON document, expands ${env.X} expressions and
// decodes it into an ordered value
func (s *Service) Load(ctx context.Context, URL string) (value.Value, error) {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return value.Null(), err
	}
	text := expandEnvExpr(string(data), s.lookup)
	if strings.EqualFold(path.Ext(URL), ".json") {
		ret, err := value.ParseJSON([]byte(text))
		if err != nil {
			return value.Null(), fmt.Errorf("failed to decode %v: %w", URL, err)
		}
		return ret, nil
	}
	node, err := yml.Decode([]byte(text))
	if err != nil {
		return value.Null(), fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	ret, err := node.ToValue()
	if err != nil {
		return value.Null(), fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return ret, nil
}

// LoadInto decodes a YAML or JSON document into a Go struct
func (s *Service) LoadInto(ctx context.Context, URL string, target interface{}) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	text := expandEnvExpr(string(data), s.lookup)
	if err = yaml.Unmarshal([]byte(text), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// Option customises the meta service
type Option func(s *Service)

// WithEnvLookup overrides environment lookup used by ${env.X} expansion
func WithEnvLookup(lookup func(string) string) Option {
	return func(s *Service) {
		s.lookup = lookup
	}
}

// WithFsOptions sets afs storage options (e.g. an embed.FS)
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.options = append(s.options, options...)
	}
}

// New creates a meta service
func New(fs afs.Service, baseURL string, opts ...Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	ret := &Service{fs: fs, baseURL: baseURL}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
