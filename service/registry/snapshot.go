package registry

import (
	"time"

	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/service/executor"
	"github.com/viant/reframe/service/variant"
)

// Plan is a loaded workflow with its compiled tasks
type Plan struct {
	Workflow *model.Workflow
	// Priority is the effective priority, lower runs first
	Priority int
	// Sequence is the package wide registration order
	Sequence int
	Tasks    []*executor.Task
}

type variantKey struct {
	direction model.Direction
	family    string
}

// Snapshot is an immutable view of a loaded package. It is shared read-only by
// concurrent requests.
type Snapshot struct {
	Version   int64
	URL       string
	LoadedAt  time.Time
	Package   *model.Package
	Ordering  codec.Ordering
	Scenarios []*model.Scenario
	// ScenarioURL is the scenario file location, fixtures resolve relative to it
	ScenarioURL string
	// Resources holds reference tables by name
	Resources value.Value

	keys      []model.Key
	workflows map[model.Key][]*Plan
	variants  map[variantKey]*variant.Resolver
}

// Workflows returns plans registered under key in registration order
func (s *Snapshot) Workflows(key model.Key) []*Plan {
	if s == nil {
		return nil
	}
	return s.workflows[key]
}

// Keys returns registry buckets in first registration order
func (s *Snapshot) Keys() []model.Key {
	if s == nil {
		return nil
	}
	return s.keys
}

// Variants returns the resolver of a message family; tables declared without
// direction apply to both directions
func (s *Snapshot) Variants(direction model.Direction, family string) (*variant.Resolver, bool) {
	if s == nil {
		return nil, false
	}
	if ret, ok := s.variants[variantKey{direction: direction, family: family}]; ok {
		return ret, true
	}
	ret, ok := s.variants[variantKey{family: family}]
	return ret, ok
}

// Plan returns a plan by workflow id
func (s *Snapshot) Plan(workflowID string) *Plan {
	if s == nil {
		return nil
	}
	for _, key := range s.keys {
		for _, plan := range s.workflows[key] {
			if plan.Workflow.ID == workflowID {
				return plan
			}
		}
	}
	return nil
}

func newSnapshot(URL string) *Snapshot {
	return &Snapshot{
		URL:       URL,
		Resources: value.NewMap(),
		workflows: map[model.Key][]*Plan{},
		variants:  map[variantKey]*variant.Resolver{},
	}
}

func (s *Snapshot) register(key model.Key, plan *Plan) {
	if _, ok := s.workflows[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.workflows[key] = append(s.workflows[key], plan)
}
