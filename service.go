package reframe

import (
	"time"

	"github.com/viant/afs"
	afsstorage "github.com/viant/afs/storage"
	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/codec/mt"
	"github.com/viant/reframe/codec/mx"
	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/runtime/orchestrator"
	"github.com/viant/reframe/service/action/debug"
	"github.com/viant/reframe/service/action/format"
	"github.com/viant/reframe/service/action/storage"
	"github.com/viant/reframe/service/action/transform"
	"github.com/viant/reframe/service/action/validator"
	"github.com/viant/reframe/service/dao"
	"github.com/viant/reframe/service/executor"
	"github.com/viant/reframe/service/meta"
	"github.com/viant/reframe/service/registry"
	"github.com/viant/reframe/service/scenario"
	"go.uber.org/zap"
)

// Version is the engine version checked against package engine_version
const Version = "1.0.0"

// Plugins lists capabilities packages may require
var Plugins = []string{"mt", "mx", "jsonlogic"}

// Service wires the engine components
type Service struct {
	runtime           *Runtime
	metaService       *meta.Service
	metaBaseURL       string
	metaFsOptions     []afsstorage.Option
	functions         *extension.Functions
	extensionServices []types.Service
	executorOptions   []executor.Option
	codecs            codec.Set
	logger            *zap.Logger
	archive           dao.Service[string, execution.Record]
	listeners         []execution.StateListener
	policy            *policy.Policy
	timeout           time.Duration
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	services := append([]types.Service{transform.New(), format.New(), validator.New(), debug.New(s.logger), storage.New()}, s.extensionServices...)
	s.functions, s.runtime.err = extension.NewFunctions(services...)
	executorOptions := append([]executor.Option{executor.WithListener(executor.LogListener(s.logger))}, s.executorOptions...)
	executorService := executor.New(s.functions, executorOptions...)
	loader := registry.NewLoader(s.metaService, executorService, s.codecs,
		registry.WithEngine(Version, Plugins...),
		registry.WithLogger(s.logger))
	s.runtime.registry = registry.New(loader)
	s.runtime.orchestrator = orchestrator.New(s.runtime.registry, executorService, s.codecs,
		orchestrator.WithTimeout(s.timeout),
		orchestrator.WithLogger(s.logger),
		orchestrator.WithArchive(s.archive),
		orchestrator.WithStateListeners(s.listeners...))
	s.runtime.scenarios = scenario.New(s.runtime.registry, s.runtime.orchestrator, s.metaService, s.logger)
	s.runtime.policy = s.policy
	s.runtime.archive = s.archive
	s.runtime.logger = s.logger
}

func (s *Service) ensureBaseSetup() {
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, meta.WithFsOptions(s.metaFsOptions...))
	}
	if s.codecs == nil {
		s.codecs = codec.NewSet(mt.New(), mx.New())
	}
}

// Runtime returns the engine runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Functions returns the task function catalog
func (s *Service) Functions() *extension.Functions {
	return s.functions
}

// RegisterExtensionServices adds function groups; packages loaded afterwards can use them
func (s *Service) RegisterExtensionServices(services ...types.Service) error {
	if s.functions == nil {
		return s.runtime.err
	}
	for i := range services {
		if err := s.functions.Register(services[i]); err != nil {
			return err
		}
	}
	return nil
}

// New creates an engine service
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
