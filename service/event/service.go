// Package event publishes typed events, such as committed request status
// transitions, on per type topics backed by a messaging queue.
package event

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/datarequest/service/messaging"
	"github.com/viant/datarequest/service/messaging/fs"
	"github.com/viant/datarequest/service/messaging/memory"
)

// Service represents a typed event bus; each event type has its own topic
type Service struct {
	vendor       messaging.Vendor
	fsConfig     func(topic string) fs.QueueConfig
	memoryConfig func(topic string) memory.Config
	logger       *slog.Logger
	mux          sync.Mutex
	publishers   map[reflect.Type]any
	listeners    map[reflect.Type]stopper
}

type stopper interface{ Stop() }

// Close stops every listener
func (s *Service) Close() {
	s.mux.Lock()
	listeners := s.listeners
	s.listeners = make(map[reflect.Type]stopper)
	s.mux.Unlock()
	for _, listener := range listeners {
		listener.Stop()
	}
}

// QueueOf creates the queue of a topic
func QueueOf[T any](s *Service, topic string) (messaging.Queue[T], error) {
	switch s.vendor {
	case messaging.VendorFS:
		return fs.NewQueue[T](afs.New(), s.fsConfig(topic))
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memoryConfig(topic)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.vendor)
}

func topicOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	for rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the listener of events of type T
func SetListenerOf[T any](s *Service, handler Handler[T]) error {
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	topic := topicOf[T]()
	listener := NewListener[T](publisher, handler, s.logger)
	s.mux.Lock()
	previous := s.listeners[topic]
	s.listeners[topic] = listener
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
	listener.Start()
	return nil
}

// PublisherOf returns the publisher of events of type T
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	topic := topicOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.publishers[topic]; ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, topic.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	s.publishers[topic] = publisher
	return publisher, nil
}

// New creates an event service; the fs vendor requires WithNewFsQueueConfig
func New(vendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		vendor:     vendor,
		publishers: make(map[reflect.Type]any),
		listeners:  make(map[reflect.Type]stopper),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch vendor {
	case messaging.VendorFS:
		if ret.fsConfig == nil {
			return nil, fmt.Errorf("fs queue vendor requires queue config")
		}
	case messaging.VendorMemory:
		if ret.memoryConfig == nil {
			ret.memoryConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", vendor)
	}
	return ret, nil
}
