// Package metadata implements request state mutation as two explicit phases:
// a principal enqueues an attribute change, then triggers the privileged agent
// that validates and applies everything that principal has enqueued.
package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/internal/idgen"
	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/store"
)

// Service represents request metadata state store
type Service struct {
	agent    *Agent
	newQueue NewQueue
	queues   map[string]Queue
	mux      sync.Mutex
	applyMux sync.Mutex
}

// Get returns the current values of a request attribute
func (s *Service) Get(ctx context.Context, requestID, attribute string) ([]string, error) {
	return s.agent.Values(ctx, requestID, attribute)
}

// SetAsync enqueues a full replacement of attribute values under principal.
// Nothing is written until ApplyEnqueued runs for the same principal.
func (s *Service) SetAsync(ctx context.Context, principal, requestID, attribute string, values []string, options ...ChangeOption) error {
	change := &Change{
		ID:        idgen.New(),
		Principal: principal,
		RequestID: requestID,
		Attribute: attribute,
		Values:    append([]string{}, values...),
		Count:     len(values),
		CreatedAt: clock.Now(),
	}
	for _, option := range options {
		option(change)
	}
	if err := change.Validate(); err != nil {
		return err
	}
	queue, err := s.queueOf(principal)
	if err != nil {
		return err
	}
	if err = queue.Publish(ctx, change); err != nil {
		return fmt.Errorf("failed to enqueue %v change: %w", attribute, err)
	}
	return nil
}

// ApplyEnqueued drains the principal queue in order; every change is applied
// at most once and rejected changes are reported, never retried.
func (s *Service) ApplyEnqueued(ctx context.Context, principal string) (*Report, error) {
	queue, err := s.queueOf(principal)
	if err != nil {
		return nil, err
	}
	s.applyMux.Lock()
	defer s.applyMux.Unlock()
	report := &Report{Principal: principal}
	for {
		message, err := queue.Poll(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to poll %v changes: %w", principal, err)
		}
		if message == nil {
			break
		}
		change := message.T()
		if change.Principal != principal {
			err = fmt.Errorf("%w: change enqueued by %v", ErrInvalidChange, change.Principal)
		} else {
			err = s.agent.Apply(ctx, change)
		}
		var settleErr error
		if err != nil {
			report.Rejected = append(report.Rejected, &Rejection{Change: change, Err: err})
			settleErr = message.Nack(err)
		} else {
			report.Applied = append(report.Applied, change)
			settleErr = message.Ack()
		}
		if settleErr != nil {
			return report, fmt.Errorf("failed to settle %v change: %w", change.Attribute, settleErr)
		}
	}
	return report, report.Err()
}

func (s *Service) queueOf(principal string) (Queue, error) {
	if principal == "" {
		return nil, fmt.Errorf("%w: principal was empty", ErrInvalidChange)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if queue, ok := s.queues[principal]; ok {
		return queue, nil
	}
	queue, err := s.newQueue(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v queue: %w", principal, err)
	}
	s.queues[principal] = queue
	return queue, nil
}

// New creates a metadata service writing through the privileged store handle
func New(privileged store.Service, layout model.Layout, options ...Option) *Service {
	ret := &Service{queues: map[string]Queue{}}
	for _, option := range options {
		option(ret)
	}
	if ret.agent == nil {
		ret.agent = NewAgent(privileged, DefaultPolicy(), layout)
	}
	if ret.newQueue == nil {
		ret.newQueue, _ = QueuesOf(VendorMemory, "")
	}
	return ret
}
