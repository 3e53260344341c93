package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/viant/reframe/model/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/viant/reframe"

// Attribute keys set on engine spans
const (
	KeyRequestID = attribute.Key("reframe.request.id")
	KeyKind      = attribute.Key("reframe.request.kind")
	KeyPackage   = attribute.Key("reframe.package.id")
	KeyFamily    = attribute.Key("reframe.message.family")
	KeyVariant   = attribute.Key("reframe.message.variant")
	KeyWorkflow  = attribute.Key("reframe.workflow.id")
	KeyFunction  = attribute.Key("reframe.function")
	KeyAttempt   = attribute.Key("reframe.attempt")
)

// Init installs a stdout exporter writing to os.Stdout or to outputFile.
// The first successful initialisation wins.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return installProvider(serviceName, serviceVersion, exporter)
}

// InitWithExporter installs the supplied exporter (OTLP, in-memory test exporters)
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	return installProvider(serviceName, serviceVersion, exporter)
}

var (
	providerOnce sync.Once
	providerErr  error
)

func installProvider(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
	})
	return providerErr
}

// Span wraps an OpenTelemetry span; a nil Span is a no-op
type Span struct {
	span trace.Span
}

// Start starts a child span of the span active in ctx
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Span{span: span}
}

// StartRequest starts the root span of an engine request
func StartRequest(ctx context.Context, requestID, kind, packageID string) (context.Context, *Span) {
	return Start(ctx, "reframe."+kind, KeyRequestID.String(requestID), KeyKind.String(kind), KeyPackage.String(packageID))
}

// StartWorkflow starts a workflow span
func StartWorkflow(ctx context.Context, workflowID string) (context.Context, *Span) {
	return Start(ctx, "workflow/"+workflowID, KeyWorkflow.String(workflowID))
}

// StartTask starts a task span
func StartTask(ctx context.Context, workflowID, taskID, function string) (context.Context, *Span) {
	return Start(ctx, "task/"+taskID, KeyWorkflow.String(workflowID), KeyFunction.String(function))
}

// Set attaches attributes
func (s *Span) Set(attrs ...attribute.KeyValue) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	s.span.SetAttributes(attrs...)
	return s
}

// Message records the detected family and variant
func (s *Span) Message(family, variant string) *Span {
	attrs := make([]attribute.KeyValue, 0, 2)
	if family != "" {
		attrs = append(attrs, KeyFamily.String(family))
	}
	if variant != "" {
		attrs = append(attrs, KeyVariant.String(variant))
	}
	return s.Set(attrs...)
}

// Diagnostics records one event per diagnostic
func (s *Span) Diagnostics(diagnostics []*types.Diagnostic) {
	if s == nil {
		return
	}
	for _, d := range diagnostics {
		if d == nil {
			continue
		}
		s.span.AddEvent("diagnostic", trace.WithAttributes(
			attribute.String("kind", string(d.Kind)),
			attribute.String("code", d.Code),
			attribute.String("workflow", d.Workflow),
			attribute.String("task", d.Task),
			attribute.String("message", d.Message),
		))
	}
}

// IDs returns trace and span ids, empty when the span is not recording
func (s *Span) IDs() (string, string) {
	if s == nil {
		return "", ""
	}
	sc := s.span.SpanContext()
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// End records the error status, nil records OK, and ends the span
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// FromContext returns the span active in ctx
func FromContext(ctx context.Context) (*Span, bool) {
	sp := trace.SpanFromContext(ctx)
	if !sp.SpanContext().IsValid() {
		return nil, false
	}
	return &Span{span: sp}, true
}
