package memory

import (
	"context"

	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/service/dao"
	"github.com/viant/reframe/service/dao/criteria"
	"github.com/viant/reframe/service/dao/store"
)

// Service keeps request records in memory
type Service struct {
	*store.MemoryStore[string, execution.Record]
}

var _ dao.Service[string, execution.Record] = (*Service)(nil)

// Save stores a copy of the record
func (s *Service) Save(ctx context.Context, record *execution.Record) error {
	return s.MemoryStore.Save(ctx, record.Clone())
}

// Load returns a copy of the stored record
func (s *Service) Load(ctx context.Context, id string) (*execution.Record, error) {
	ret, err := s.MemoryStore.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ret.Clone(), nil
}

func match(record *execution.Record, parameters []*dao.Parameter) bool {
	return criteria.FilterByStatus(record.Status, parameters) &&
		criteria.FilterByKind(string(record.Kind), parameters) &&
		criteria.FilterByFamily(record.Family, parameters)
}

// New creates an in-memory record store
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, execution.Record](func(r *execution.Record) string {
		return r.ID
	}, match)}
}
