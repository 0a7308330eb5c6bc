package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/datarequest/service/messaging"
)

const idleDelay = 50 * time.Millisecond

// Handler processes an event; a returned error nacks the event
type Handler[T any] func(ctx context.Context, event *Event[T]) error

// Listener dispatches consumed events to a handler until stopped
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   Handler[T]
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

// Stop cancels consumption and waits for the handler loop to exit
func (l *Listener[T]) Stop() {
	l.cancel()
	l.done.Wait()
}

// Start consumes events in a background goroutine
func (l *Listener[T]) Start() {
	l.done.Add(1)
	go func() {
		defer l.done.Done()
		for {
			message, err := l.publisher.Next(l.ctx)
			if l.ctx.Err() != nil {
				return
			}
			if err != nil {
				l.logger.Error("failed to consume event", "error", err)
			}
			if message == nil {
				select {
				case <-l.ctx.Done():
					return
				case <-time.After(idleDelay):
				}
				continue
			}
			l.dispatch(message)
		}
	}()
}

func (l *Listener[T]) dispatch(message messaging.Message[Event[T]]) {
	err := l.handle(message.T())
	if err == nil {
		err = message.Ack()
	} else {
		l.logger.Warn("event rejected", "error", err)
		err = message.Nack(err)
	}
	if err != nil {
		l.logger.Error("failed to settle event", "error", err)
	}
}

func (l *Listener[T]) handle(event *Event[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return l.handler(l.ctx, event)
}

// NewListener creates a listener
func NewListener[T any](publisher *Publisher[T], handler Handler[T], logger *slog.Logger) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}
