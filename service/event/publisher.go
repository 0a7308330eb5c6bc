package event

import (
	"context"

	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/service/messaging"
)

// Publisher publishes and consumes events of a single type
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// Publish stamps and enqueues event
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	return p.queue.Publish(ctx, event)
}

// Next returns the next unsettled event message, nil when a non blocking queue is empty
func (p *Publisher[T]) Next(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

// NewPublisher creates a publisher
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}
