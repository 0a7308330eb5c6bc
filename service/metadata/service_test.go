package metadata

import (
	"context"
	"errors"
	"os"
	"path"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/datarequest/model"
	mfs "github.com/viant/datarequest/service/messaging/fs"
	"github.com/viant/datarequest/service/store/fs"
)

const requestID = "r1"

func newTestService(t *testing.T, options ...Option) (*Service, *fs.Service) {
	ctx := context.Background()
	srv, err := fs.New("mem://localhost/metadata-" + uuid.New().String())
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	layout := model.Layout{}
	assert.NoError(t, srv.CreateCollection(ctx, "alice", layout.Collection(requestID)))
	assert.NoError(t, srv.WriteObject(ctx, "alice", layout.Payload(requestID), []byte("{}")))
	return New(srv, layout, options...), srv
}

func TestService_EnqueueThenTrigger(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	assert.NoError(t, service.SetAsync(ctx, "alice", requestID, model.AttributeStatus, []string{"submitted"}))
	values, err := service.Get(ctx, requestID, model.AttributeStatus)
	assert.NoError(t, err)
	assert.Empty(t, values, "enqueued change should not be visible")

	report, err := service.ApplyEnqueued(ctx, "bob")
	assert.NoError(t, err)
	assert.Empty(t, report.Applied, "other principal queue")
	values, _ = service.Get(ctx, requestID, model.AttributeStatus)
	assert.Empty(t, values)

	report, err = service.ApplyEnqueued(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, report.Applied, 1)
	values, err = service.Get(ctx, requestID, model.AttributeStatus)
	assert.NoError(t, err)
	assert.Equal(t, []string{"submitted"}, values)

	report, err = service.ApplyEnqueued(ctx, "alice")
	assert.NoError(t, err)
	assert.Empty(t, report.Applied, "changes apply once")
}

func TestService_Rejections(t *testing.T) {
	testCases := []struct {
		description string
		attribute   string
		values      []string
		options     []ChangeOption
		expectErr   error
		expected    map[string][]string
	}{
		{
			description: "invalid transition",
			attribute:   model.AttributeStatus,
			values:      []string{"approved"},
			expectErr:   ErrInvalidTransition,
			expected:    map[string][]string{model.AttributeStatus: {"submitted"}},
		},
		{
			description: "multi valued status",
			attribute:   model.AttributeStatus,
			values:      []string{"assigned", "canceled"},
			expectErr:   ErrInvalidTransition,
			expected:    map[string][]string{model.AttributeStatus: {"submitted"}},
		},
		{
			description: "attribute not permitted",
			attribute:   "owner",
			values:      []string{"mallory"},
			expectErr:   ErrNotPermitted,
			expected:    map[string][]string{"owner": nil},
		},
		{
			description: "stale reviewer set",
			attribute:   model.AttributeReviewers,
			values:      []string{"carol"},
			options:     []ChangeOption{WithExpected([]string{"bob"})},
			expectErr:   ErrConflict,
			expected:    map[string][]string{model.AttributeReviewers: {"bob", "carol"}},
		},
		{
			description: "guarded reviewer set",
			attribute:   model.AttributeReviewers,
			values:      []string{"carol"},
			options:     []ChangeOption{WithExpected([]string{"carol", "bob"})},
			expected:    map[string][]string{model.AttributeReviewers: {"carol"}},
		},
		{
			description: "valid transition",
			attribute:   model.AttributeStatus,
			values:      []string{"assigned"},
			expected:    map[string][]string{model.AttributeStatus: {"assigned"}},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			service, _ := newTestService(t)
			assert.NoError(t, service.SetAsync(ctx, "alice", requestID, model.AttributeStatus, []string{"submitted"}))
			assert.NoError(t, service.SetAsync(ctx, "alice", requestID, model.AttributeReviewers, []string{"bob", "carol"}))
			_, err := service.ApplyEnqueued(ctx, "alice")
			assert.NoError(t, err)

			assert.NoError(t, service.SetAsync(ctx, "bob", requestID, testCase.attribute, testCase.values, testCase.options...))
			report, err := service.ApplyEnqueued(ctx, "bob")
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr), "expected %v, but had %v", testCase.expectErr, err)
				assert.Len(t, report.Rejected, 1)
			} else {
				assert.NoError(t, err)
				assert.Len(t, report.Applied, 1)
			}
			for attribute, expected := range testCase.expected {
				values, err := service.Get(ctx, requestID, attribute)
				assert.NoError(t, err)
				if len(expected) == 0 {
					assert.Empty(t, values, attribute)
					continue
				}
				assert.ElementsMatch(t, expected, values, attribute)
			}
		})
	}
}

func TestService_RejectionDoesNotBlockQueue(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	assert.NoError(t, service.SetAsync(ctx, "alice", requestID, model.AttributeStatus, []string{"reviewed"}))
	assert.NoError(t, service.SetAsync(ctx, "alice", requestID, model.AttributeStatus, []string{"submitted"}))
	report, err := service.ApplyEnqueued(ctx, "alice")
	assert.Error(t, err)
	assert.Len(t, report.Rejected, 1)
	assert.Len(t, report.Applied, 1)
	values, _ := service.Get(ctx, requestID, model.AttributeStatus)
	assert.Equal(t, []string{"submitted"}, values)
}

func TestService_FSQueues(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "metadata-queue")
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)
	queues, err := QueuesOf(VendorFS, tempDir)
	if !assert.NoError(t, err) {
		return
	}
	ctx := context.Background()
	service, _ := newTestService(t, WithQueues(queues))
	assert.NoError(t, service.SetAsync(ctx, "alice@example.com", requestID, model.AttributeStatus, []string{"submitted"}))
	assert.NoError(t, service.SetAsync(ctx, "alice@example.com", requestID, model.AttributeStatus, []string{"canceled"}))
	report, err := service.ApplyEnqueued(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, report.Applied, 2)
	values, _ := service.Get(ctx, requestID, model.AttributeStatus)
	assert.Equal(t, []string{"canceled"}, values)

	assert.NoError(t, service.SetAsync(ctx, "alice@example.com", requestID, model.AttributeStatus, []string{"approved"}))
	report, err = service.ApplyEnqueued(ctx, "alice@example.com")
	assert.Error(t, err)
	assert.Len(t, report.Rejected, 1)
	journal, err := mfs.NewQueue[Change](afs.New(), mfs.QueueConfig{BasePath: path.Join(tempDir, "alice@example.com")})
	if assert.NoError(t, err) {
		for dir, expect := range map[string]int{mfs.DoneDir: 2, mfs.RejectedDir: 1, mfs.PendingDir: 0} {
			size, err := journal.Size(ctx, dir)
			assert.NoError(t, err)
			assert.Equal(t, expect, size, dir)
		}
	}

	_, err = QueuesOf("kafka", "")
	assert.Error(t, err)
	_, err = QueuesOf(VendorFS, "")
	assert.Error(t, err)
}

func TestService_SetAsyncValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	assert.Error(t, service.SetAsync(ctx, "", requestID, model.AttributeStatus, []string{"submitted"}))
	assert.Error(t, service.SetAsync(ctx, "alice", "", model.AttributeStatus, []string{"submitted"}))
	assert.Error(t, service.SetAsync(ctx, "alice", requestID, "", []string{"submitted"}))
}
