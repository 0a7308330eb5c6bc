// Package messaging defines the queue abstraction shared by metadata change
// queues and event topics.
package messaging

import (
	"context"
	"errors"
)

// Vendor represents the name of a messaging vendor
type Vendor string

// Supported vendors
const (
	VendorMemory Vendor = "memory"
	VendorFS     Vendor = "fs"
)

// ErrSettled is returned when a message is acked or nacked twice
var ErrSettled = errors.New("messaging: message already settled")

// ErrFull is returned by Publish when a bounded queue is at capacity
var ErrFull = errors.New("messaging: queue is full")

// Queue represents a FIFO queue for any payload type
type Queue[T any] interface {
	// Publish appends a copy of t to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves the next message; implementations either wait for
	// one or return nil when the queue is empty
	Consume(ctx context.Context) (Message[T], error)
}

// Poller retrieves a message without waiting for one
type Poller[T any] interface {
	// Poll returns the next message or nil when the queue is empty
	Poll(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue. A message is settled
// exactly once, by either Ack or Nack.
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack settles a processed message
	Ack() error

	// Nack settles a message that could not be processed; it is never redelivered
	Nack(err error) error
}
