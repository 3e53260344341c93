package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/service/dao"
	"github.com/viant/reframe/service/dao/criteria"
	"go.uber.org/zap"
)

// Service stores request records as JSON files under baseURL
type Service struct {
	baseURL string
	fs      afs.Service
	logger  *zap.Logger
	mu      sync.RWMutex
}

var _ dao.Service[string, execution.Record] = (*Service)(nil)

// Save persists a record
func (s *Service) Save(ctx context.Context, record *execution.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %v: %w", record.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(record.ID)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save record to %s: %w", URL, err)
	}
	return nil
}

// Load retrieves a record
func (s *Service) Load(ctx context.Context, id string) (*execution.Record, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	URL := s.recordURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check record %v: %w", id, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %v: %w", id, err)
	}
	ret := &execution.Record{}
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %v: %w", id, err)
	}
	return ret, nil
}

// Delete removes a record
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check record %v: %w", id, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, URL)
}

// List returns records matching Status and Kind parameters
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ok, _ := s.fs.Exists(ctx, s.baseURL); !ok {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	var ret []*execution.Record
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("failed to read record", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		record := &execution.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			s.logger.Warn("failed to unmarshal record", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		if !criteria.FilterByStatus(record.Status, parameters) ||
			!criteria.FilterByKind(string(record.Kind), parameters) ||
			!criteria.FilterByFamily(record.Family, parameters) {
			continue
		}
		ret = append(ret, record)
	}
	return ret, nil
}

func (s *Service) recordURL(id string) string {
	return url.Join(s.baseURL, id+".json")
}

// New creates a record store rooted at baseURL
func New(fs afs.Service, baseURL string, logger *zap.Logger) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("record base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if url.IsRelative(baseURL) {
		baseURL = url.Normalize(baseURL, file.Scheme)
	}
	return &Service{baseURL: baseURL, fs: fs, logger: logger}, nil
}
