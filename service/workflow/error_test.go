package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/datarequest/service/auth"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/metadata"
	"github.com/viant/datarequest/service/request"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expect      Kind
	}{
		{description: "not found", err: fmt.Errorf("read: %w", dao.ErrNotFound), expect: KindNotFound},
		{description: "ambiguous state", err: request.ErrAmbiguousState, expect: KindAmbiguousState},
		{description: "ambiguous owner", err: auth.ErrAmbiguousOwner, expect: KindAmbiguousState},
		{description: "conflict", err: fmt.Errorf("apply: %w", metadata.ErrConflict), expect: KindConflict},
		{description: "transition", err: metadata.ErrInvalidTransition, expect: KindPrecondition},
		{description: "not permitted", err: metadata.ErrNotPermitted, expect: KindForbidden},
		{description: "payload", err: request.ErrInvalidPayload, expect: KindInvalidInput},
		{description: "deadline", err: context.DeadlineExceeded, expect: KindTransport},
		{description: "unknown", err: errors.New("disk full"), expect: KindStorage},
		{description: "classified", err: newError(KindConflict, 0, "", nil), expect: KindConflict},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := classify(testCase.err, KindStorage, "failed")
			assert.Equal(t, testCase.expect, KindOf(err))
			if testCase.description != "classified" {
				assert.True(t, errors.Is(err, testCase.err))
			}
		})
	}
	assert.Nil(t, classify(nil, KindStorage, "failed"))
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError(KindForbidden, CodeNotReviewer, "not a reviewer", nil))
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(err, &Error{Kind: KindForbidden, Code: CodeNotReviewer}))
	assert.False(t, errors.Is(err, &Error{Kind: KindForbidden, Code: CodeNotMember}))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "not a reviewer", errors.Unwrap(err).Error())
}
