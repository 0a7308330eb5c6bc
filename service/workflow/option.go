package workflow

import (
	"log/slog"

	"github.com/viant/datarequest/service/auth"
	"github.com/viant/datarequest/service/event"
	"github.com/viant/datarequest/service/metadata"
	"github.com/viant/datarequest/service/notify"
	"github.com/viant/datarequest/service/request"
)

// Option represents an engine option
type Option func(e *Engine)

// WithRequests sets the request repository
func WithRequests(requests *request.Service) Option {
	return func(e *Engine) {
		e.requests = requests
	}
}

// WithGuard sets the authorization guard
func WithGuard(guard *auth.Guard) Option {
	return func(e *Engine) {
		e.guard = guard
	}
}

// WithMetadata sets the metadata state store
func WithMetadata(service *metadata.Service) Option {
	return func(e *Engine) {
		e.metadata = service
	}
}

// WithSender sets the notification transport
func WithSender(sender notify.Sender) Option {
	return func(e *Engine) {
		e.sender = sender
	}
}

// WithTemplates sets the notification templates
func WithTemplates(templates *notify.Templates) Option {
	return func(e *Engine) {
		e.templates = templates
	}
}

// WithEvents publishes committed transitions on service
func WithEvents(service *event.Service) Option {
	return func(e *Engine) {
		e.events = service
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}
