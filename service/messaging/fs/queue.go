// Package fs provides a durable file system queue. Every message is a json
// file moved from pending to inflight on delivery and to done or rejected
// once settled; file names sort in publish order.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/internal/idgen"
	"github.com/viant/datarequest/service/messaging"
)

// Queue directories
const (
	PendingDir  = "pending"
	InflightDir = "inflight"
	DoneDir     = "done"
	RejectedDir = "rejected"
)

// QueueConfig holds configuration for filesystem queue
type QueueConfig struct {
	BasePath string
	// Retain keeps settled messages under done and rejected
	Retain bool
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{BasePath: "/tmp/datarequest/queue", Retain: true}
}

// Message implements messaging.Message for filesystem queue
type Message[T any] struct {
	ID          string    `json:"id"`
	Data        T         `json:"data"`
	Error       string    `json:"error,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	SettledAt   time.Time `json:"settledAt,omitempty"`

	name    string
	queue   *Queue[T]
	mux     sync.Mutex
	settled bool
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to done
func (m *Message[T]) Ack() error {
	return m.settle(DoneDir, nil)
}

// Nack moves the message to rejected with err recorded
func (m *Message[T]) Nack(err error) error {
	return m.settle(RejectedDir, err)
}

func (m *Message[T]) settle(dir string, err error) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.settled {
		return messaging.ErrSettled
	}
	m.settled = true
	m.SettledAt = clock.Now()
	if err != nil {
		m.Error = err.Error()
	}
	return m.queue.settle(context.Background(), m, dir)
}

// Queue implements a filesystem-based messaging.Queue; Consume never waits
type Queue[T any] struct {
	fs           afs.Service
	config       QueueConfig
	mux          sync.Mutex
	lastSequence int64
}

// Publish writes a new pending message
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	message := &Message[T]{ID: idgen.New(), Data: *t, PublishedAt: now}
	message.name = fmt.Sprintf("%020d-%s.json", q.nextSequence(now), message.ID)
	return q.write(ctx, q.dir(PendingDir), message)
}

// Consume moves the oldest pending message to inflight, nil when there is none
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mux.Lock()
	defer q.mux.Unlock()
	objects, err := q.list(ctx, PendingDir)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	object := objects[0]
	message, err := q.read(ctx, object.URL())
	if err != nil {
		return nil, err
	}
	message.name = object.Name()
	if err = q.fs.Move(ctx, object.URL(), path.Join(q.dir(InflightDir), object.Name())); err != nil {
		return nil, fmt.Errorf("failed to move %v to %v: %w", object.Name(), InflightDir, err)
	}
	return message, nil
}

// Poll is equivalent to Consume
func (q *Queue[T]) Poll(ctx context.Context) (messaging.Message[T], error) {
	message, err := q.Consume(ctx)
	if err != nil || message == nil {
		return nil, err
	}
	return message, nil
}

// Size returns the number of messages in dir
func (q *Queue[T]) Size(ctx context.Context, dir string) (int, error) {
	objects, err := q.list(ctx, dir)
	return len(objects), err
}

// Messages returns messages in dir in publish order
func (q *Queue[T]) Messages(ctx context.Context, dir string) ([]*Message[T], error) {
	objects, err := q.list(ctx, dir)
	if err != nil {
		return nil, err
	}
	result := make([]*Message[T], 0, len(objects))
	for _, object := range objects {
		message, err := q.read(ctx, object.URL())
		if err != nil {
			return nil, err
		}
		message.name = object.Name()
		result = append(result, message)
	}
	return result, nil
}

// recover returns messages left inflight by an interrupted consumer to pending
func (q *Queue[T]) recover(ctx context.Context) error {
	objects, err := q.list(ctx, InflightDir)
	if err != nil {
		return err
	}
	for _, object := range objects {
		if err = q.fs.Move(ctx, object.URL(), path.Join(q.dir(PendingDir), object.Name())); err != nil {
			return fmt.Errorf("failed to recover %v: %w", object.Name(), err)
		}
	}
	return nil
}

func (q *Queue[T]) settle(ctx context.Context, m *Message[T], dir string) error {
	q.mux.Lock()
	defer q.mux.Unlock()
	if q.config.Retain {
		if err := q.write(ctx, q.dir(dir), m); err != nil {
			return err
		}
	}
	inflightURL := path.Join(q.dir(InflightDir), m.name)
	if err := q.fs.Delete(ctx, inflightURL); err != nil {
		return fmt.Errorf("failed to delete %v: %w", inflightURL, err)
	}
	return nil
}

// nextSequence returns a strictly increasing sequence derived from the clock
func (q *Queue[T]) nextSequence(at time.Time) int64 {
	q.mux.Lock()
	defer q.mux.Unlock()
	sequence := at.UnixNano()
	if sequence <= q.lastSequence {
		sequence = q.lastSequence + 1
	}
	q.lastSequence = sequence
	return sequence
}

func (q *Queue[T]) dir(name string) string {
	return path.Join(q.config.BasePath, name)
}

func (q *Queue[T]) list(ctx context.Context, dir string) ([]storage.Object, error) {
	objects, err := q.fs.List(ctx, q.dir(dir), option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %v messages: %w", dir, err)
	}
	var result []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			result = append(result, object)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (q *Queue[T]) write(ctx context.Context, dir string, message *Message[T]) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message %v: %w", message.ID, err)
	}
	return q.fs.Upload(ctx, path.Join(dir, message.name), file.DefaultFileOsMode, bytes.NewReader(data))
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	message := &Message[T]{queue: q}
	if err = json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return message, nil
}

// NewQueue creates a queue under config.BasePath, recovering inflight messages
func NewQueue[T any](fs afs.Service, config QueueConfig) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	ret := &Queue[T]{fs: fs, config: config}
	ctx := context.Background()
	for _, name := range []string{PendingDir, InflightDir, DoneDir, RejectedDir} {
		dir := ret.dir(name)
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := ret.recover(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
var _ messaging.Poller[any] = (*Queue[any])(nil)
