package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/service/executor"
	"github.com/viant/reframe/service/meta"
	"github.com/viant/reframe/service/variant"
	"go.uber.org/zap"
)

// Loader builds snapshots from package descriptors
type Loader struct {
	meta          *meta.Service
	executor      *executor.Service
	codecs        codec.Set
	engineVersion string
	plugins       []string
	logger        *zap.Logger
}

// LoaderOption customises a loader
type LoaderOption func(l *Loader)

// WithEngine sets the engine version and provided plugins checked against package descriptors
func WithEngine(version string, plugins ...string) LoaderOption {
	return func(l *Loader) {
		l.engineVersion = version
		l.plugins = plugins
	}
}

// WithLogger sets the loader logger
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader
func NewLoader(metaService *meta.Service, executorService *executor.Service, codecs codec.Set, opts ...LoaderOption) *Loader {
	ret := &Loader{meta: metaService, executor: executorService, codecs: codecs, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Load reads and compiles a complete package; every failure is a ConfigError or MappingError
func (l *Loader) Load(ctx context.Context, URL string) (*Snapshot, error) {
	URL = l.meta.URL(URL)
	doc, err := l.meta.Load(ctx, URL)
	if err != nil {
		return nil, configError(err, "package %v", URL)
	}
	pkg, err := model.DecodePackage(doc)
	if err != nil {
		return nil, configError(err, "package %v", URL)
	}
	pkg.Source = &model.Source{URL: URL}
	if err = pkg.CheckEngine(l.engineVersion, l.plugins); err != nil {
		return nil, configError(err, "package %v", URL)
	}
	ret := newSnapshot(URL)
	ret.Package = pkg
	if pkg.Ordering != nil {
		orderingURL := l.meta.Resolve(URL, pkg.Ordering.Path)
		table, err := l.meta.Load(ctx, orderingURL)
		if err != nil {
			return nil, configError(err, "ordering %v", orderingURL)
		}
		if ret.Ordering, err = codec.DecodeOrdering(table); err != nil {
			return nil, configError(err, "ordering %v", orderingURL)
		}
	}
	if pkg.Variants != nil {
		if err = l.loadVariants(ctx, ret, l.meta.Resolve(URL, pkg.Variants.Path)); err != nil {
			return nil, err
		}
	}
	if len(pkg.Resources) > 0 {
		if err = l.loadResources(ctx, ret, URL); err != nil {
			return nil, err
		}
	}
	env := &extension.Environment{Codecs: l.codecs, Ordering: ret.Ordering, Resources: ret.Resources}
	sequence := 0
	for _, kind := range model.Kinds {
		res, ok := pkg.Workflows[kind]
		if !ok {
			continue
		}
		indexURL := l.meta.Resolve(URL, res.Path)
		if sequence, err = l.loadIndex(ctx, ret, kind, indexURL, env, sequence); err != nil {
			return nil, err
		}
	}
	if pkg.Scenarios != nil {
		ret.ScenarioURL = l.meta.Resolve(URL, pkg.Scenarios.Path)
		fixtures, err := l.meta.Load(ctx, ret.ScenarioURL)
		if err != nil {
			return nil, configError(err, "scenarios %v", ret.ScenarioURL)
		}
		if ret.Scenarios, err = model.DecodeScenarios(fixtures); err != nil {
			return nil, configError(err, "scenarios %v", ret.ScenarioURL)
		}
	}
	l.logger.Info("package loaded",
		zap.String("package", pkg.ID),
		zap.String("version", pkg.Version),
		zap.Int("workflows", sequence),
		zap.Int("resources", ret.Resources.Len()),
		zap.Int("scenarios", len(ret.Scenarios)))
	return ret, nil
}

func (l *Loader) loadVariants(ctx context.Context, snapshot *Snapshot, URL string) error {
	doc, err := l.meta.Load(ctx, URL)
	if err != nil {
		return configError(err, "variants %v", URL)
	}
	tables, err := model.DecodeVariantTables(doc)
	if err != nil {
		return configError(err, "variants %v", URL)
	}
	for _, table := range tables {
		resolver, err := variant.New(table)
		if err != nil {
			return err
		}
		key := variantKey{direction: table.Direction, family: table.MessageType}
		if _, ok := snapshot.variants[key]; ok {
			return types.NewError(types.KindConfig, "variants %v: duplicate table for %v %v", URL, table.Direction, table.MessageType)
		}
		snapshot.variants[key] = resolver
	}
	return nil
}

func (l *Loader) loadIndex(ctx context.Context, snapshot *Snapshot, kind model.Kind, indexURL string, env *extension.Environment, sequence int) (int, error) {
	doc, err := l.meta.Load(ctx, indexURL)
	if err != nil {
		return sequence, configError(err, "%v index %v", kind, indexURL)
	}
	entries, err := model.DecodeIndex(doc)
	if err != nil {
		return sequence, configError(err, "%v index %v", kind, indexURL)
	}
	for _, entry := range entries {
		workflowURL := l.meta.Resolve(indexURL, entry.Path)
		plan, err := l.loadWorkflow(ctx, workflowURL, entry, env)
		if err != nil {
			return sequence, err
		}
		if prev := snapshot.Plan(plan.Workflow.ID); prev != nil {
			return sequence, types.NewError(types.KindConfig, "workflow %v: duplicate id %v, already defined by %v", workflowURL, plan.Workflow.ID, prev.Workflow.Source.URL)
		}
		sequence++
		plan.Sequence = sequence
		snapshot.register(model.Key{Kind: kind, Direction: entry.Direction, Family: entry.MessageType}, plan)
	}
	return sequence, nil
}

func (l *Loader) loadWorkflow(ctx context.Context, URL string, entry *model.IndexEntry, env *extension.Environment) (*Plan, error) {
	doc, err := l.meta.Load(ctx, URL)
	if err != nil {
		return nil, configError(err, "workflow %v", URL)
	}
	workflow, err := model.DecodeWorkflow(doc)
	if err != nil {
		return nil, configError(err, "workflow %v", URL)
	}
	workflow.Source = &model.Source{URL: URL}
	if workflow.ID == "" {
		workflow.ID = strings.TrimSuffix(path.Base(URL), path.Ext(URL))
	}
	if workflow.Name == "" {
		workflow.Name = workflow.ID
	}
	if issues := workflow.Validate(); len(issues) > 0 {
		return nil, configError(errors.Join(issues...), "workflow %v", URL)
	}
	if err = workflow.Compile(); err != nil {
		return nil, configError(err, "workflow %v", URL)
	}
	ret := &Plan{Workflow: workflow, Priority: workflow.EffectivePriority(entry.Priority)}
	for _, task := range workflow.Tasks {
		compiled, err := l.executor.Compile(workflow, task, env.ForLocation(URL))
		if err != nil {
			return nil, fmt.Errorf("workflow %v: %w", URL, err)
		}
		ret.Tasks = append(ret.Tasks, compiled)
	}
	return ret, nil
}

// configError keeps engine errors as they are and classifies anything else as ConfigError
func configError(err error, format string, args ...interface{}) error {
	if types.KindOf(err) != "" {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	return types.WrapError(types.KindConfig, err, format, args...)
}
