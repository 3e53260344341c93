package reframe

import (
	"time"

	"github.com/viant/afs/storage"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/service/dao"
	"github.com/viant/reframe/service/executor"
	"github.com/viant/reframe/service/meta"
	"github.com/viant/reframe/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Option customises the engine service
type Option func(s *Service)

// WithLogger sets the engine logger, zap.NewNop by default
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetaService sets the meta service used to load packages
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the base URL relative package locations resolve against
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithExtensionServices registers additional task function groups
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.New (e.g. a custom task listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithArchive stores a record of every finished request
func WithArchive(archive dao.Service[string, execution.Record]) Option {
	return func(s *Service) {
		s.archive = archive
	}
}

// WithStateListeners observes every context write
func WithStateListeners(listeners ...execution.StateListener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listeners...)
	}
}

// WithPolicy sets the default request policy
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithTimeout sets the default request deadline
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for example
// OTLP, Jaeger or Zipkin. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
