package datarequest

import (
	"log/slog"

	"github.com/viant/datarequest/service/event"
	"github.com/viant/datarequest/service/notify"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/datarequest/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ObjectStore combines object and directory access
type ObjectStore interface {
	store.Service
	store.Directory
}

// Option represents datarequest service option
type Option func(s *Service)

// WithObjectStore sets the object store, bypassing config.Store
func WithObjectStore(objectStore ObjectStore) Option {
	return func(s *Service) {
		s.store = objectStore
	}
}

// WithSender sets the notification sender, bypassing config.Mail
func WithSender(sender notify.Sender) Option {
	return func(s *Service) {
		s.sender = sender
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithEventService publishes committed status transitions on the event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
