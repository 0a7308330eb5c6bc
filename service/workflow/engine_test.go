package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/event"
	"github.com/viant/datarequest/service/notify"
	"github.com/viant/datarequest/service/notify/memory"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/datarequest/service/store/fs"
	"github.com/viant/datarequest/service/store/storetest"
)

const alicePayload = `{"name":"Alice","email":"alice@x.org","title":"Cohort study"}`

type fixture struct {
	engine *Engine
	store  *fs.Service
	sender *memory.Sender
}

func newFixture(t *testing.T, options ...Option) *fixture {
	srv, err := fs.New("mem://localhost/workflow-" + uuid.New().String())
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	attributes := map[string]string{"category": "datarequests-research"}
	storetest.Seed(t, srv, DefaultZone,
		&storetest.Group{Name: DefaultCommittee, Attributes: attributes, Members: []string{"bob", "carol"}},
		&storetest.Group{Name: DefaultBoard, Attributes: attributes, Members: []string{"dave", "rods"}},
		&storetest.Group{Name: DefaultDataManagers, Attributes: attributes, Members: []string{"gina", "rods"}},
	)
	sender := memory.New()
	options = append([]Option{
		WithSender(sender),
		WithTemplates(notify.NewTemplates("yoda.test")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, options...)
	engine := New(DefaultConfig(), srv, model.Layout{}, options...)
	return &fixture{engine: engine, store: srv, sender: sender}
}

func (f *fixture) submit(t *testing.T) string {
	requestID, err := f.engine.Submit(context.Background(), "alice", []byte(alicePayload))
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return requestID
}

func (f *fixture) status(t *testing.T, requestID string) model.Status {
	status, err := f.engine.Requests().ReadStatus(context.Background(), requestID)
	assert.NoError(t, err)
	return status
}

func (f *fixture) subjects(t *testing.T, recipients ...string) []string {
	messages, err := f.sender.Messages(context.Background(), recipients...)
	assert.NoError(t, err)
	result := []string{}
	for _, message := range messages {
		result = append(result, message.Subject)
	}
	return result
}

func TestEngine_ReviewScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.submit(t)
	assert.Equal(t, model.StatusSubmitted, f.status(t, requestID))

	assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob"}))
	assert.Equal(t, model.StatusAssigned, f.status(t, requestID))
	isReviewer, err := f.engine.IsReviewer(ctx, requestID, "bob")
	assert.NoError(t, err)
	assert.True(t, isReviewer)

	assert.NoError(t, f.engine.SubmitReview(ctx, "bob", requestID, []byte(`{"advice":"approve"}`)))
	assert.Equal(t, model.StatusReviewed, f.status(t, requestID))

	researcher := f.subjects(t, "alice@x.org")
	if assert.Len(t, researcher, 1) {
		assert.True(t, strings.Contains(researcher[0], "reviewed"))
	}
	assert.Equal(t, []string{"[bod member] YOUth data request " + requestID + ": reviewed"}, f.subjects(t, "dave"))
	assert.Empty(t, f.subjects(t, "rods"))
	assert.Len(t, f.subjects(t), 2)

	reviewers, err := f.engine.Requests().Reviewers(ctx, requestID)
	assert.NoError(t, err)
	assert.Empty(t, reviewers)

	permissions, err := f.store.Permissions(ctx, model.Layout{}.Object(requestID, model.ReviewObject("bob")))
	assert.NoError(t, err)
	assert.Contains(t, permissions, store.NewACL(store.ModeDefault, store.AccessRead, DefaultBoard, model.Layout{}.Object(requestID, model.ReviewObject("bob"))))
}

func TestEngine_Submit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.submit(t)

	aRequest, err := f.engine.Get(ctx, requestID)
	assert.NoError(t, err)
	assert.Equal(t, alicePayload, string(aRequest.Payload))
	assert.Equal(t, "alice", aRequest.Owner)
	assert.Equal(t, model.StatusSubmitted, aRequest.Status)

	collection := model.Layout{}.Collection(requestID)
	permissions, err := f.store.Permissions(ctx, collection)
	assert.NoError(t, err)
	assert.Contains(t, permissions, store.NewACL(store.ModeRecursive, store.AccessWrite, DefaultDataManagers, collection))
	assert.Contains(t, permissions, store.NewACL(store.ModeRecursive, store.AccessWrite, DefaultBoard, collection))

	_, err = f.engine.Submit(ctx, "alice", []byte(`["not an object"]`))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.engine.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	isOwner, err := f.engine.IsRequestOwner(ctx, requestID, "alice")
	assert.NoError(t, err)
	assert.True(t, isOwner)
	isOwner, err = f.engine.IsRequestOwner(ctx, requestID, "bob")
	assert.NoError(t, err)
	assert.False(t, isOwner)
	_, err = f.engine.IsRequestOwner(ctx, "missing", "bob")
	assert.True(t, errors.Is(err, ErrAmbiguousState))
}

func TestEngine_Assign(t *testing.T) {
	testCases := []struct {
		description string
		prepare     func(t *testing.T, f *fixture, requestID string)
		assignees   []string
		expectErr   error
		expect      model.Status
		reviewers   []string
	}{
		{
			description: "assigns reviewers",
			assignees:   []string{"bob", "carol"},
			expect:      model.StatusAssigned,
			reviewers:   []string{"bob", "carol"},
		},
		{
			description: "empty assignees",
			assignees:   []string{},
			expectErr:   ErrInvalidInput,
			expect:      model.StatusSubmitted,
		},
		{
			description: "already assigned",
			prepare: func(t *testing.T, f *fixture, requestID string) {
				assert.NoError(t, f.engine.Assign(context.Background(), "gina", requestID, []string{"bob"}))
			},
			assignees: []string{},
			expectErr: ErrPrecondition,
			expect:    model.StatusAssigned,
			reviewers: []string{"bob"},
		},
		{
			description: "canceled request",
			prepare: func(t *testing.T, f *fixture, requestID string) {
				assert.NoError(t, f.engine.Cancel(context.Background(), "alice", requestID))
			},
			assignees: []string{"carol"},
			expectErr: ErrPrecondition,
			expect:    model.StatusCanceled,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			requestID := f.submit(t)
			if testCase.prepare != nil {
				testCase.prepare(t, f, requestID)
			}
			err := f.engine.Assign(ctx, "gina", requestID, testCase.assignees)
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr), "expected %v, but had %v", testCase.expectErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.expect, f.status(t, requestID))
			reviewers, err := f.engine.Requests().Reviewers(ctx, requestID)
			assert.NoError(t, err)
			assert.ElementsMatch(t, testCase.reviewers, reviewers)
		})
	}

	err := newFixture(t).engine.Assign(context.Background(), "gina", "missing", []string{"bob"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEngine_SubmitReview(t *testing.T) {
	testCases := []struct {
		description string
		reviewer    string
		payload     string
		expectKind  Kind
		expectCode  int
	}{
		{description: "not a committee member", reviewer: "dave", payload: `{}`, expectKind: KindForbidden, expectCode: CodeNotMember},
		{description: "not assigned", reviewer: "carol", payload: `{}`, expectKind: KindForbidden, expectCode: CodeNotReviewer},
		{description: "invalid payload", reviewer: "bob", payload: `nope`, expectKind: KindInvalidInput},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			requestID := f.submit(t)
			assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob"}))

			err := f.engine.SubmitReview(ctx, testCase.reviewer, requestID, []byte(testCase.payload))
			var wErr *Error
			if assert.True(t, errors.As(err, &wErr)) {
				assert.Equal(t, testCase.expectKind, wErr.Kind)
				assert.Equal(t, testCase.expectCode, wErr.Code)
			}
			assert.Equal(t, model.StatusAssigned, f.status(t, requestID))
			assert.Empty(t, f.subjects(t))
		})
	}
}

func TestEngine_SubmitReview_Partial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.submit(t)
	assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob", "carol"}))

	assert.NoError(t, f.engine.SubmitReview(ctx, "carol", requestID, []byte(`{}`)))
	assert.Equal(t, model.StatusAssigned, f.status(t, requestID))
	reviewers, _ := f.engine.Requests().Reviewers(ctx, requestID)
	assert.Equal(t, []string{"bob"}, reviewers)
	assert.Empty(t, f.subjects(t))

	err := f.engine.SubmitReview(ctx, "carol", requestID, []byte(`{}`))
	assert.True(t, errors.Is(err, &Error{Kind: KindForbidden, Code: CodeNotReviewer}))

	assert.NoError(t, f.engine.SubmitReview(ctx, "bob", requestID, []byte(`{}`)))
	assert.Equal(t, model.StatusReviewed, f.status(t, requestID))
	reviews, err := f.engine.Reviews(ctx, requestID)
	assert.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestEngine_NotificationFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithSender(memory.New(memory.WithError(errors.New("relay down")))))
	requestID := f.submit(t)
	assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob"}))
	assert.NoError(t, f.engine.SubmitReview(ctx, "bob", requestID, []byte(`{}`)))
	assert.Equal(t, model.StatusReviewed, f.status(t, requestID))
}

func (f *fixture) reviewed(t *testing.T) string {
	ctx := context.Background()
	requestID := f.submit(t)
	assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob"}))
	assert.NoError(t, f.engine.SubmitReview(ctx, "bob", requestID, []byte(`{}`)))
	return requestID
}

func TestEngine_SubmitEvaluation(t *testing.T) {
	testCases := []struct {
		description string
		evaluator   string
		decision    string
		reviewed    bool
		expectErr   error
		expect      model.Status
		researcher  string
		managers    []string
	}{
		{description: "approved", evaluator: "dave", decision: "approved", reviewed: true, expect: model.StatusApproved, researcher: "approved", managers: []string{"approved"}},
		{description: "rejected", evaluator: "dave", decision: "rejected", reviewed: true, expect: model.StatusRejected, researcher: "rejected", managers: []string{}},
		{description: "not a board member", evaluator: "bob", decision: "approved", reviewed: true, expectErr: &Error{Kind: KindForbidden, Code: CodeNotMember}, expect: model.StatusReviewed},
		{description: "invalid decision", evaluator: "dave", decision: "maybe", reviewed: true, expectErr: ErrInvalidInput, expect: model.StatusReviewed},
		{description: "not reviewed", evaluator: "dave", decision: "approved", expectErr: ErrPrecondition, expect: model.StatusSubmitted},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			var requestID string
			if testCase.reviewed {
				requestID = f.reviewed(t)
			} else {
				requestID = f.submit(t)
			}
			before := len(f.subjects(t, "alice@x.org"))
			err := f.engine.SubmitEvaluation(ctx, testCase.evaluator, requestID, testCase.decision, []byte(`{"note":"n"}`))
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr), "expected %v, but had %v", testCase.expectErr, err)
				assert.Equal(t, testCase.expect, f.status(t, requestID))
				assert.Len(t, f.subjects(t, "alice@x.org"), before)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, f.status(t, requestID))

			researcher := f.subjects(t, "alice@x.org")
			if assert.Len(t, researcher, before+1) {
				assert.True(t, strings.HasSuffix(researcher[before], testCase.researcher))
			}
			managers := f.subjects(t, "gina")
			assert.Len(t, managers, len(testCase.managers))
			assert.Empty(t, f.subjects(t, "rods"))

			evaluations, err := f.engine.Evaluations(ctx, "alice", requestID)
			assert.NoError(t, err)
			if assert.Len(t, evaluations, 1) {
				assert.Equal(t, model.Decision(testCase.decision), evaluations[0].Decision)
			}
		})
	}
}

func TestEngine_RejectionNamesDataManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.reviewed(t)
	assert.NoError(t, f.engine.SubmitEvaluation(ctx, "dave", requestID, "rejected", []byte(`{}`)))
	messages, err := f.sender.Messages(ctx, "alice@x.org")
	assert.NoError(t, err)
	last := messages[len(messages)-1]
	assert.True(t, strings.Contains(last.Body, "(gina)"))
	assert.True(t, strings.Contains(last.Body, "Dear Alice,"))
}

func TestEngine_Approve(t *testing.T) {
	testCases := []struct {
		description string
		user        string
		reviewed    bool
		expectErr   error
		expect      model.Status
	}{
		{description: "owner can not approve", user: "alice", reviewed: true, expectErr: ErrForbidden, expect: model.StatusReviewed},
		{description: "board member approves", user: "dave", reviewed: true, expect: model.StatusApproved},
		{description: "not reviewed", user: "dave", expectErr: ErrPrecondition, expect: model.StatusSubmitted},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			f := newFixture(t)
			var requestID string
			if testCase.reviewed {
				requestID = f.reviewed(t)
			} else {
				requestID = f.submit(t)
			}
			err := f.engine.Approve(context.Background(), testCase.user, requestID)
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr), "expected %v, but had %v", testCase.expectErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.expect, f.status(t, requestID))
		})
	}

	err := newFixture(t).engine.Approve(context.Background(), "dave", "missing")
	assert.True(t, errors.Is(err, &Error{Kind: KindAmbiguousState, Code: CodeNotOwner}))
}

func TestEngine_Cancel(t *testing.T) {
	testCases := []struct {
		description string
		user        string
		assigned    bool
		expectErr   error
		expect      model.Status
	}{
		{description: "owner cancels", user: "alice", expect: model.StatusCanceled},
		{description: "data manager cancels", user: "gina", expect: model.StatusCanceled},
		{description: "stranger", user: "dave", expectErr: ErrForbidden, expect: model.StatusSubmitted},
		{description: "already assigned", user: "alice", assigned: true, expectErr: ErrPrecondition, expect: model.StatusAssigned},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			requestID := f.submit(t)
			if testCase.assigned {
				assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob"}))
			}
			err := f.engine.Cancel(ctx, testCase.user, requestID)
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr), "expected %v, but had %v", testCase.expectErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.expect, f.status(t, requestID))
		})
	}
}

func TestEngine_TransitionEvents(t *testing.T) {
	events, err := event.New("memory")
	if !assert.NoError(t, err) {
		return
	}
	defer events.Close()
	var mux sync.Mutex
	var transitions []model.Transition
	assert.NoError(t, event.SetListenerOf[model.Transition](events, func(ctx context.Context, e *event.Event[model.Transition]) error {
		mux.Lock()
		defer mux.Unlock()
		transitions = append(transitions, e.Data)
		return nil
	}))

	f := newFixture(t, WithEvents(events))
	requestID := f.submit(t)
	assert.NoError(t, f.engine.Assign(context.Background(), "gina", requestID, []string{"bob"}))

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(transitions) == 2
	}, 2*time.Second, 10*time.Millisecond)
	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, model.StatusNone, transitions[0].From)
	assert.Equal(t, model.StatusSubmitted, transitions[0].To)
	assert.Equal(t, model.StatusSubmitted, transitions[1].From)
	assert.Equal(t, model.StatusAssigned, transitions[1].To)
	assert.Equal(t, "gina", transitions[1].Principal)
}

func TestEngine_Assign_RequiresDataManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.submit(t)
	for _, user := range []string{"mallory", "alice", "bob"} {
		err := f.engine.Assign(ctx, user, requestID, []string{"bob"})
		assert.True(t, errors.Is(err, &Error{Kind: KindForbidden, Code: CodeNotMember}), "%v: %v", user, err)
	}
	assert.Equal(t, model.StatusSubmitted, f.status(t, requestID))
	reviewers, err := f.engine.Requests().Reviewers(ctx, requestID)
	assert.NoError(t, err)
	assert.Empty(t, reviewers)
}

func TestEngine_Evaluations_Access(t *testing.T) {
	testCases := []struct {
		description string
		user        string
		expectErr   error
	}{
		{description: "board member", user: "dave"},
		{description: "owner", user: "alice"},
		{description: "committee member", user: "bob", expectErr: ErrForbidden},
		{description: "outsider", user: "mallory", expectErr: ErrForbidden},
	}
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.reviewed(t)
	assert.NoError(t, f.engine.SubmitEvaluation(ctx, "dave", requestID, "approved", []byte(`{"note":"board only"}`)))
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			evaluations, err := f.engine.Evaluations(ctx, testCase.user, requestID)
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr), "expected %v, but had %v", testCase.expectErr, err)
				assert.Nil(t, evaluations)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, evaluations, 1)
		})
	}
}

func TestEngine_InvalidRequestID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.submit(t)
	testCases := []struct {
		description string
		requestID   string
	}{
		{description: "empty", requestID: ""},
		{description: "parent", requestID: ".."},
		{description: "traversal", requestID: "../datarequests-research/" + requestID},
		{description: "nested", requestID: requestID + "/reviews"},
		{description: "backslash", requestID: `..\` + requestID},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			_, err := f.engine.Get(ctx, testCase.requestID)
			assert.True(t, errors.Is(err, ErrInvalidInput), "get: %v", err)
			err = f.engine.Assign(ctx, "gina", testCase.requestID, []string{"bob"})
			assert.True(t, errors.Is(err, ErrInvalidInput), "assign: %v", err)
		})
	}
	assert.Equal(t, model.StatusSubmitted, f.status(t, requestID))
}

func TestEngine_SubmitReview_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	requestID := f.submit(t)
	assert.NoError(t, f.engine.Assign(ctx, "gina", requestID, []string{"bob", "carol"}))

	reviewers := []string{"bob", "carol"}
	errs := make([]error, len(reviewers))
	var waitGroup sync.WaitGroup
	for i, reviewer := range reviewers {
		waitGroup.Add(1)
		go func(i int, reviewer string) {
			defer waitGroup.Done()
			errs[i] = f.engine.SubmitReview(ctx, reviewer, requestID, []byte(`{"by":"`+reviewer+`"}`))
		}(i, reviewer)
	}
	waitGroup.Wait()

	var losers []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		assert.Equal(t, KindConflict, KindOf(err), "%v: %v", reviewers[i], err)
		losers = append(losers, reviewers[i])
	}
	if !assert.True(t, len(losers) <= 1, "at most one review may lose: %v", errs) {
		return
	}
	remaining, err := f.engine.Requests().Reviewers(ctx, requestID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, losers, remaining)
	if len(losers) == 1 {
		assert.Equal(t, model.StatusAssigned, f.status(t, requestID))
		assert.NoError(t, f.engine.SubmitReview(ctx, losers[0], requestID, []byte(`{"retry":true}`)))
	}
	assert.Equal(t, model.StatusReviewed, f.status(t, requestID))
	remaining, err = f.engine.Requests().Reviewers(ctx, requestID)
	assert.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Len(t, f.subjects(t, "alice@x.org"), 1)
}
