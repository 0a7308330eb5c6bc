// Package memory provides an in-process FIFO queue.
package memory

import (
	"context"
	"sync"

	"github.com/viant/datarequest/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	// Capacity bounds pending messages, zero means unbounded
	Capacity int
}

// DefaultConfig returns an unbounded queue configuration
func DefaultConfig() Config {
	return Config{}
}

// Message implements messaging.Message for in-memory queue
type Message[T any] struct {
	payload T
	queue   *Queue[T]
	mux     sync.Mutex
	settled bool
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack settles the message
func (m *Message[T]) Ack() error {
	return m.settle(nil, false)
}

// Nack settles the message and records err as a rejection
func (m *Message[T]) Nack(err error) error {
	return m.settle(err, true)
}

func (m *Message[T]) settle(err error, rejected bool) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.settled {
		return messaging.ErrSettled
	}
	m.settled = true
	if rejected {
		m.queue.reject(err)
	}
	return nil
}

// Queue implements an in-memory messaging.Queue; Consume waits for a message
type Queue[T any] struct {
	config   Config
	mux      sync.Mutex
	pending  []*Message[T]
	rejected []error
	ready    chan struct{}
}

// Publish appends a copy of t
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mux.Lock()
	if q.config.Capacity > 0 && len(q.pending) >= q.config.Capacity {
		q.mux.Unlock()
		return messaging.ErrFull
	}
	q.pending = append(q.pending, &Message[T]{payload: *t, queue: q})
	q.mux.Unlock()
	q.signal()
	return nil
}

// Consume waits for the next message until ctx is done
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	for {
		if message := q.pop(); message != nil {
			return message, nil
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Poll returns the next message, nil when the queue is empty
func (q *Queue[T]) Poll(ctx context.Context) (messaging.Message[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if message := q.pop(); message != nil {
		return message, nil
	}
	return nil, nil
}

// Size returns the number of pending messages
func (q *Queue[T]) Size() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return len(q.pending)
}

// Rejections returns errors of nacked messages in settle order
func (q *Queue[T]) Rejections() []error {
	q.mux.Lock()
	defer q.mux.Unlock()
	return append([]error{}, q.rejected...)
}

func (q *Queue[T]) pop() *Message[T] {
	q.mux.Lock()
	if len(q.pending) == 0 {
		q.mux.Unlock()
		return nil
	}
	message := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	remaining := len(q.pending)
	q.mux.Unlock()
	if remaining > 0 {
		q.signal()
	}
	return message
}

// signal wakes one waiting consumer; a pending signal is never duplicated
func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) reject(err error) {
	q.mux.Lock()
	q.rejected = append(q.rejected, err)
	q.mux.Unlock()
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	return &Queue[T]{config: config, ready: make(chan struct{}, 1)}
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
var _ messaging.Poller[any] = (*Queue[any])(nil)
