package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/auth"
	"github.com/viant/datarequest/service/metadata"
	"github.com/viant/datarequest/service/store"
)

// Status codes of specific authorization failures
const (
	CodeNotMember   = -2
	CodeNotReviewer = -3
	CodeNotOwner    = -2
)

// Submit stores a new request owned by user and marks it submitted
func (e *Engine) Submit(ctx context.Context, user string, payload []byte) (string, error) {
	var requestID string
	err := e.run(ctx, "submit", user, "", func(ctx context.Context) error {
		if user == "" {
			return newError(KindInvalidInput, 0, "user was empty", nil)
		}
		var err error
		if requestID, err = e.requests.Create(ctx, user, payload); err != nil {
			return classify(err, KindStorage, "failed to create request")
		}
		if err = e.setStatus(ctx, user, requestID, model.StatusNone, model.StatusSubmitted); err != nil {
			return err
		}
		collection := e.layout.Collection(requestID)
		for _, group := range []string{e.config.Groups.DataManagers, e.config.Groups.Board} {
			if err = e.grant(ctx, store.NewACL(store.ModeRecursive, store.AccessWrite, group, collection)); err != nil {
				return err
			}
		}
		return nil
	})
	return requestID, err
}

// Assign replaces the reviewer set of a submitted request and marks it assigned
func (e *Engine) Assign(ctx context.Context, user, requestID string, assignees []string) error {
	return e.runOn(ctx, "assign", user, requestID, func(ctx context.Context) error {
		status, err := e.status(ctx, requestID)
		if err != nil {
			return err
		}
		if status != model.StatusSubmitted {
			return newError(KindPrecondition, 0, "Proposal is already assigned.", nil)
		}
		isManager, err := e.guard.Membership(ctx, e.config.Groups.DataManagers, user)
		if err != nil {
			return classify(err, KindStorage, "failed to check membership")
		}
		if !isManager {
			return newError(KindForbidden, CodeNotMember, "User is not a data manager.", nil)
		}
		if len(assignees) == 0 {
			return newError(KindInvalidInput, 0, "assignees were empty", nil)
		}
		for _, assignee := range assignees {
			if strings.TrimSpace(assignee) == "" {
				return newError(KindInvalidInput, 0, "assignee was empty", nil)
			}
		}
		current, err := e.requests.Reviewers(ctx, requestID)
		if err != nil {
			return classify(err, KindStorage, "failed to read reviewers")
		}
		if err = e.mutate(ctx, user, requestID, model.AttributeReviewers, assignees, metadata.WithExpected(current)); err != nil {
			return err
		}
		return e.setStatus(ctx, user, requestID, status, model.StatusAssigned)
	})
}

// SubmitReview stores reviewer's review and removes the reviewer from the
// reviewer set; the last review marks the request reviewed.
func (e *Engine) SubmitReview(ctx context.Context, reviewer, requestID string, payload []byte) error {
	return e.runOn(ctx, "submitReview", reviewer, requestID, func(ctx context.Context) error {
		isMember, err := e.guard.Membership(ctx, e.config.Groups.Committee, reviewer)
		if err != nil {
			return classify(err, KindStorage, "failed to check membership")
		}
		if !isMember {
			return newError(KindForbidden, CodeNotMember, "User is not a member of the Data Management Committee.", nil)
		}
		reviewers, err := e.requests.Reviewers(ctx, requestID)
		if err != nil {
			return classify(err, KindStorage, "failed to read reviewers")
		}
		if !contains(reviewers, reviewer) {
			return newError(KindForbidden, CodeNotReviewer, "User is not assigned as a reviewer to this request.", nil)
		}
		if err = e.requests.WriteReview(ctx, requestID, reviewer, payload); err != nil {
			return classify(err, KindStorage, "failed to write review")
		}
		reviewPath := e.layout.Object(requestID, model.ReviewObject(reviewer))
		if err = e.grant(ctx, store.NewACL(store.ModeDefault, store.AccessRead, e.config.Groups.Board, reviewPath)); err != nil {
			return err
		}
		remaining, ok := remove(reviewers, reviewer)
		if !ok {
			return newError(KindInternal, 0, "reviewer vanished from reviewer set", nil)
		}
		if err = e.mutate(ctx, reviewer, requestID, model.AttributeReviewers, remaining, metadata.WithExpected(reviewers)); err != nil {
			return err
		}
		if len(remaining) > 0 {
			return nil
		}
		if err = e.setStatus(ctx, reviewer, requestID, model.StatusAssigned, model.StatusReviewed); err != nil {
			return err
		}
		e.notifyReviewed(ctx, requestID)
		return nil
	})
}

// SubmitEvaluation stores a board member's evaluation and applies its decision
func (e *Engine) SubmitEvaluation(ctx context.Context, evaluator, requestID, decision string, payload []byte) error {
	return e.runOn(ctx, "submitEvaluation", evaluator, requestID, func(ctx context.Context) error {
		isMember, err := e.guard.Membership(ctx, e.config.Groups.Board, evaluator)
		if err != nil {
			return classify(err, KindStorage, "failed to check membership")
		}
		if !isMember {
			return newError(KindForbidden, CodeNotMember, "User is not a member of the Board of Directors.", nil)
		}
		aDecision, err := model.ParseDecision(decision)
		if err != nil {
			return newError(KindInvalidInput, 0, "invalid decision", err)
		}
		status, err := e.status(ctx, requestID)
		if err != nil {
			return err
		}
		if !status.CanTransition(aDecision.Status()) {
			return newError(KindPrecondition, 0, "Request can not be "+string(aDecision)+" while "+string(status)+".", nil)
		}
		if err = e.requests.WriteEvaluation(ctx, requestID, evaluator, aDecision, payload); err != nil {
			return classify(err, KindStorage, "failed to write evaluation")
		}
		if err = e.setStatus(ctx, evaluator, requestID, status, aDecision.Status()); err != nil {
			return err
		}
		e.notifyEvaluated(ctx, requestID, aDecision)
		return nil
	})
}

// Approve marks a request approved; the request owner can never approve it
func (e *Engine) Approve(ctx context.Context, user, requestID string) error {
	return e.runOn(ctx, "approve", user, requestID, func(ctx context.Context) error {
		isOwner, err := e.ownership(ctx, requestID, user)
		if err != nil {
			return err
		}
		if isOwner {
			return newError(KindForbidden, 0, "Request owner can not approve the request.", nil)
		}
		status, err := e.status(ctx, requestID)
		if err != nil {
			return err
		}
		if !status.CanTransition(model.StatusApproved) {
			return newError(KindPrecondition, 0, "Request can not be approved while "+string(status)+".", nil)
		}
		return e.setStatus(ctx, user, requestID, status, model.StatusApproved)
	})
}

// Cancel withdraws a submitted request; only its owner or a data manager can cancel
func (e *Engine) Cancel(ctx context.Context, user, requestID string) error {
	return e.runOn(ctx, "cancel", user, requestID, func(ctx context.Context) error {
		isOwner, err := e.ownership(ctx, requestID, user)
		if err != nil {
			return err
		}
		if !isOwner {
			isManager, err := e.guard.Membership(ctx, e.config.Groups.DataManagers, user)
			if err != nil {
				return classify(err, KindStorage, "failed to check membership")
			}
			if !isManager {
				return newError(KindForbidden, 0, "Only the request owner or a data manager can cancel the request.", nil)
			}
		}
		status, err := e.status(ctx, requestID)
		if err != nil {
			return err
		}
		if status != model.StatusSubmitted {
			return newError(KindPrecondition, 0, "Only submitted requests can be canceled.", nil)
		}
		return e.setStatus(ctx, user, requestID, status, model.StatusCanceled)
	})
}

// IsRequestOwner reports whether user owns the request
func (e *Engine) IsRequestOwner(ctx context.Context, requestID, user string) (bool, error) {
	var result bool
	err := e.runOn(ctx, "isRequestOwner", user, requestID, func(ctx context.Context) (err error) {
		result, err = e.ownership(ctx, requestID, user)
		return err
	})
	return result, err
}

// IsReviewer reports whether user is in the current reviewer set
func (e *Engine) IsReviewer(ctx context.Context, requestID, user string) (bool, error) {
	var result bool
	err := e.runOn(ctx, "isReviewer", user, requestID, func(ctx context.Context) error {
		reviewers, err := e.requests.Reviewers(ctx, requestID)
		if err != nil {
			return classify(err, KindStorage, "failed to read reviewers")
		}
		result = contains(reviewers, user)
		return nil
	})
	return result, err
}

// Get returns a request with payload, status and owner
func (e *Engine) Get(ctx context.Context, requestID string) (*model.DataRequest, error) {
	var result *model.DataRequest
	err := e.runOn(ctx, "get", "", requestID, func(ctx context.Context) (err error) {
		result, err = e.requests.Load(ctx, requestID)
		return classify(err, KindStorage, "failed to load request")
	})
	return result, err
}

// Reviews returns every review of a request
func (e *Engine) Reviews(ctx context.Context, requestID string) ([]*model.Review, error) {
	var result []*model.Review
	err := e.runOn(ctx, "reviews", "", requestID, func(ctx context.Context) (err error) {
		result, err = e.requests.Reviews(ctx, requestID)
		return classify(err, KindStorage, "failed to read reviews")
	})
	return result, err
}

// Evaluations returns every evaluation of a request to board members and the request owner
func (e *Engine) Evaluations(ctx context.Context, user, requestID string) ([]*model.Evaluation, error) {
	var result []*model.Evaluation
	err := e.runOn(ctx, "evaluations", user, requestID, func(ctx context.Context) (err error) {
		isMember, err := e.guard.Membership(ctx, e.config.Groups.Board, user)
		if err != nil {
			return classify(err, KindStorage, "failed to check membership")
		}
		if !isMember {
			isOwner, err := e.ownership(ctx, requestID, user)
			if err != nil {
				return err
			}
			if !isOwner {
				return newError(KindForbidden, 0, "Only board members and the request owner can read evaluations.", nil)
			}
		}
		result, err = e.requests.Evaluations(ctx, requestID)
		return classify(err, KindStorage, "failed to read evaluations")
	})
	return result, err
}

func (e *Engine) ownership(ctx context.Context, requestID, user string) (bool, error) {
	isOwner, err := e.guard.Ownership(ctx, e.layout.Payload(requestID), user)
	if err == nil {
		return isOwner, nil
	}
	if errors.Is(err, auth.ErrAmbiguousOwner) {
		return false, newError(KindAmbiguousState, CodeNotOwner, "Not exactly 1 owner found. Something is probably wrong.", err)
	}
	return false, classify(err, KindStorage, "failed to read owner")
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

// remove drops the first exact match of value
func remove(values []string, value string) ([]string, bool) {
	for i, candidate := range values {
		if candidate == value {
			result := make([]string, 0, len(values)-1)
			result = append(result, values[:i]...)
			return append(result, values[i+1:]...), true
		}
	}
	return values, false
}
