// Package workflow drives the data request lifecycle: every operation checks
// authorization and state preconditions, then mutates protected attributes
// through the enqueue and trigger protocol and notifies the parties involved.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/auth"
	"github.com/viant/datarequest/service/event"
	"github.com/viant/datarequest/service/metadata"
	"github.com/viant/datarequest/service/notify"
	"github.com/viant/datarequest/service/request"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/datarequest/tracing"
)

// Engine represents data request workflow engine
type Engine struct {
	config    *Config
	store     store.Service
	layout    model.Layout
	requests  *request.Service
	guard     *auth.Guard
	metadata  *metadata.Service
	sender    notify.Sender
	templates *notify.Templates
	events    *event.Service
	logger    *slog.Logger
}

// Requests returns the request repository
func (e *Engine) Requests() *request.Service {
	return e.requests
}

// Guard returns the authorization guard
func (e *Engine) Guard() *auth.Guard {
	return e.guard
}

// runOn validates requestID before running an operation on an existing request
func (e *Engine) runOn(ctx context.Context, name, principal, requestID string, fn func(ctx context.Context) error) error {
	if err := model.ValidateRequestID(requestID); err != nil {
		return newError(KindInvalidInput, 0, "Invalid request id.", err)
	}
	return e.run(ctx, name, principal, requestID, fn)
}

// run bounds fn with the operation timeout and a tracing span
func (e *Engine) run(ctx context.Context, name, principal, requestID string, fn func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.config.TimeoutMs)*time.Millisecond)
	defer cancel()
	ctx, span := tracing.StartOperation(ctx, "workflow."+name, requestID, principal)
	started := time.Now()
	defer func() {
		defer span.End(err)
		if err != nil {
			span.SetErrorKind(string(KindOf(err)))
			e.logger.Info("operation failed", "operation", name, "requestID", requestID, "principal", principal, "kind", KindOf(err), "error", err)
			return
		}
		e.logger.Debug("operation completed", "operation", name, "requestID", requestID, "principal", principal, "elapsed", time.Since(started))
	}()
	return fn(ctx)
}

// mutate enqueues a protected attribute change under principal and triggers the agent
func (e *Engine) mutate(ctx context.Context, principal, requestID, attribute string, values []string, options ...metadata.ChangeOption) error {
	if err := e.metadata.SetAsync(ctx, principal, requestID, attribute, values, options...); err != nil {
		return classify(err, KindStorage, "failed to enqueue "+attribute+" change")
	}
	report, err := e.metadata.ApplyEnqueued(ctx, principal)
	if report != nil {
		for _, rejection := range report.Rejected {
			e.logger.Warn("change rejected", "requestID", rejection.Change.RequestID, "principal", principal,
				"attribute", rejection.Change.Attribute, "error", rejection.Err)
		}
	}
	if err != nil {
		return classify(err, KindStorage, "failed to apply "+attribute+" change")
	}
	return nil
}

func (e *Engine) setStatus(ctx context.Context, principal, requestID string, from, to model.Status) error {
	if err := e.mutate(ctx, principal, requestID, model.AttributeStatus, []string{string(to)}); err != nil {
		return err
	}
	e.publish(ctx, &model.Transition{RequestID: requestID, From: from, To: to, Principal: principal, At: time.Now().UTC()})
	return nil
}

func (e *Engine) publish(ctx context.Context, transition *model.Transition) {
	if e.events == nil {
		return
	}
	publisher, err := event.PublisherOf[model.Transition](e.events)
	if err == nil {
		aContext := &event.Context{RequestID: transition.RequestID, Principal: transition.Principal, EventType: event.TypeTransition, Service: "workflow"}
		err = publisher.Publish(ctx, event.NewEvent(aContext, *transition))
	}
	if err != nil {
		e.logger.Warn("failed to publish transition", "requestID", transition.RequestID, "to", transition.To, "error", err)
	}
}

// status reads the current request status
func (e *Engine) status(ctx context.Context, requestID string) (model.Status, error) {
	status, err := e.requests.ReadStatus(ctx, requestID)
	if err != nil {
		return "", classify(err, KindStorage, "failed to read status")
	}
	return status, nil
}

func (e *Engine) grant(ctx context.Context, acl *store.ACL) error {
	if err := e.store.SetACL(ctx, acl); err != nil {
		return classify(err, KindStorage, "failed to grant "+string(acl.Access)+" to "+acl.Principal)
	}
	return nil
}

// New creates a workflow engine over srv
func New(config *Config, srv store.Service, layout model.Layout, options ...Option) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	config.Init()
	ret := &Engine{config: config, store: srv, layout: layout}
	for _, option := range options {
		option(ret)
	}
	if ret.requests == nil {
		ret.requests = request.New(srv, layout)
	}
	if ret.guard == nil {
		ret.guard = auth.New(srv, config.Zone)
	}
	if ret.metadata == nil {
		ret.metadata = metadata.New(srv, layout)
	}
	if ret.sender == nil {
		ret.sender = notify.Nop{}
	}
	if ret.templates == nil {
		ret.templates = notify.NewTemplates("")
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
