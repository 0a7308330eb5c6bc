package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module
const InstrumentationName = "github.com/viant/datarequest"

// Span attribute keys
const (
	AttrRequestID = attribute.Key("request.id")
	AttrPrincipal = attribute.Key("principal")
	AttrErrorKind = attribute.Key("error.kind")
)

var (
	providerOnce sync.Once
	providerErr  error
)

// Init installs a stdout exporter writing to outputFile, or os.Stdout when empty.
// Only the first initialisation takes effect.
func Init(serviceName, serviceVersion, outputFile string) error {
	var writer io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		writer = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(writer))
	if err != nil {
		return err
	}
	return InitWithExporter(serviceName, serviceVersion, exporter)
}

// InitWithExporter installs exporter; only the first initialisation takes effect
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(), resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		))
		if err != nil {
			providerErr = err
			return
		}
		otel.SetTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		))
	})
	return providerErr
}

// Span wraps an OpenTelemetry span; a nil Span is a no-op
type Span struct {
	span trace.Span
}

// SetErrorKind records the classified failure kind
func (s *Span) SetErrorKind(kind string) {
	if s == nil || kind == "" {
		return
	}
	s.span.SetAttributes(AttrErrorKind.String(kind))
}

// End records err, or an OK status when nil, and ends the span
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

// StartOperation starts an internal span for a workflow operation on a request
func StartOperation(ctx context.Context, name, requestID, principal string) (context.Context, *Span) {
	return start(ctx, name, trace.SpanKindInternal, requestID, principal)
}

// StartCall starts a server span for a remote call
func StartCall(ctx context.Context, name, principal string) (context.Context, *Span) {
	return start(ctx, name, trace.SpanKindServer, "", principal)
}

func start(ctx context.Context, name string, kind trace.SpanKind, requestID, principal string) (context.Context, *Span) {
	attributes := []attribute.KeyValue{AttrPrincipal.String(principal)}
	if requestID != "" {
		attributes = append(attributes, AttrRequestID.String(requestID))
	}
	ctx, span := otel.Tracer(InstrumentationName).Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attributes...))
	return ctx, &Span{span: span}
}
