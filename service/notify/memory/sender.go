// Package memory provides an in-process notification outbox.
package memory

import (
	"context"
	"time"

	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/internal/idgen"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/dao/criteria"
	"github.com/viant/datarequest/service/dao/store"
	"github.com/viant/datarequest/service/notify"
)

// Record represents a delivered message
type Record struct {
	ID      string
	Message notify.Message
	SentAt  time.Time
}

// Sender records messages instead of delivering them
type Sender struct {
	outbox dao.Service[string, Record]
	err    error
}

var _ notify.Sender = (*Sender)(nil)

// Send records message, or returns the configured failure
func (s *Sender) Send(ctx context.Context, message *notify.Message) error {
	if s.err != nil {
		return s.err
	}
	if err := message.Validate(); err != nil {
		return err
	}
	return s.outbox.Save(ctx, &Record{ID: idgen.New(), Message: *message, SentAt: clock.Now()})
}

// Messages returns recorded messages in send order, optionally only those sent to recipients
func (s *Sender) Messages(ctx context.Context, recipients ...string) ([]*notify.Message, error) {
	var parameters []*dao.Parameter
	if len(recipients) > 0 {
		parameters = append(parameters, dao.NewParameter("To", recipients...))
	}
	records, err := s.outbox.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	result := make([]*notify.Message, 0, len(records))
	for _, record := range records {
		message := record.Message
		result = append(result, &message)
	}
	return result, nil
}

// Option represents a sender option
type Option func(s *Sender)

// WithError makes every Send fail with err
func WithError(err error) Option {
	return func(s *Sender) {
		s.err = err
	}
}

// New creates a memory sender
func New(options ...Option) *Sender {
	ret := &Sender{
		outbox: store.NewMemoryStore[string, Record](
			func(r *Record) string { return r.ID },
			func(r *Record, parameters []*dao.Parameter) bool {
				return criteria.Match(parameters, "To", r.Message.To)
			}),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}
