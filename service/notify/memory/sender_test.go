package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/service/notify"
)

func TestSender(t *testing.T) {
	ctx := context.Background()
	sentAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	defer clock.Freeze(sentAt)()
	sender := New()
	assert.NoError(t, sender.Send(ctx, &notify.Message{To: "a@uu.nl", Subject: "one"}))
	assert.NoError(t, sender.Send(ctx, &notify.Message{To: "b@uu.nl", Subject: "two"}))
	assert.NoError(t, sender.Send(ctx, &notify.Message{To: "a@uu.nl", Subject: "three"}))
	assert.Error(t, sender.Send(ctx, &notify.Message{Subject: "no recipient"}))

	records, err := sender.outbox.List(ctx)
	assert.NoError(t, err)
	if assert.Len(t, records, 3) {
		assert.Equal(t, sentAt, records[0].SentAt)
		assert.NotEqual(t, records[0].ID, records[1].ID)
	}

	testCases := []struct {
		description string
		recipients  []string
		expect      []string
	}{
		{description: "all", expect: []string{"one", "two", "three"}},
		{description: "single recipient", recipients: []string{"a@uu.nl"}, expect: []string{"one", "three"}},
		{description: "unknown recipient", recipients: []string{"c@uu.nl"}, expect: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			messages, err := sender.Messages(ctx, testCase.recipients...)
			assert.NoError(t, err)
			subjects := []string{}
			for _, message := range messages {
				subjects = append(subjects, message.Subject)
			}
			assert.Equal(t, testCase.expect, subjects)
		})
	}
}

func TestSender_WithError(t *testing.T) {
	failure := errors.New("relay down")
	sender := New(WithError(failure))
	err := sender.Send(context.Background(), &notify.Message{To: "a@uu.nl", Subject: "one"})
	assert.True(t, errors.Is(err, failure))
}
