package api

import (
	"context"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/model/types"
	"github.com/viant/datarequest/service/workflow"
)

func (s *Service) registerMethods() {
	s.register("submitDatarequest", "submits a new data request", DataInput{}, []string{"data"}, executable(s.submitDatarequest))
	s.register("getDatarequest", "returns request payload and status", RequestInput{}, []string{"requestId"}, executable(s.getDatarequest))
	s.register("isRequestOwner", "checks whether user owns the request", UserInput{}, []string{"requestId", "user"}, executable(s.isRequestOwner))
	s.register("isReviewer", "checks whether user is assigned for review", UserInput{}, []string{"requestId", "user"}, executable(s.isReviewer))
	s.register("assignRequest", "assigns committee reviewers", AssignInput{}, []string{"assignees", "requestId"}, executable(s.assignRequest))
	s.register("submitReview", "submits a committee review", ReviewInput{}, []string{"data", "requestId"}, executable(s.submitReview))
	s.register("getReviews", "returns committee reviews", RequestInput{}, []string{"requestId"}, executable(s.getReviews))
	s.register("submitEvaluation", "submits the board evaluation", EvaluationInput{}, []string{"data", "requestId", "decision"}, executable(s.submitEvaluation))
	s.register("getEvaluations", "returns board evaluations to board members and the owner", RequestInput{}, []string{"requestId"}, executable(s.getEvaluations))
	s.register("approveRequest", "approves a reviewed request", UserInput{}, []string{"requestId", "user"}, executable(s.approveRequest))
	s.register("cancelRequest", "cancels a submitted request", RequestInput{}, []string{"requestId"}, executable(s.cancelRequest))
}

func executable[I any](fn func(ctx context.Context, input *I, output *Output) error) types.Executable {
	return func(ctx context.Context, input, output interface{}) error {
		in, ok := input.(*I)
		if !ok {
			return types.NewInvalidInputError(input)
		}
		out, ok := output.(*Output)
		if !ok {
			return types.NewInvalidOutputError(output)
		}
		return fn(ctx, in, out)
	}
}

func (s *Service) submitDatarequest(ctx context.Context, input *DataInput, output *Output) error {
	requestID, err := s.engine.Submit(ctx, types.PrincipalFrom(ctx), []byte(input.Data))
	if err != nil {
		return err
	}
	output.Set("requestId", requestID)
	return nil
}

func (s *Service) getDatarequest(ctx context.Context, input *RequestInput, output *Output) error {
	request, err := s.engine.Get(ctx, input.RequestID)
	if err != nil {
		return err
	}
	output.Set("requestJSON", string(request.Payload))
	output.Set("requestStatus", string(request.Status))
	output.Set("owner", request.Owner)
	return nil
}

func (s *Service) isRequestOwner(ctx context.Context, input *UserInput, output *Output) error {
	isOwner, err := s.engine.IsRequestOwner(ctx, input.RequestID, input.User)
	if err != nil {
		return err
	}
	output.Set("isRequestOwner", isOwner)
	return nil
}

func (s *Service) isReviewer(ctx context.Context, input *UserInput, output *Output) error {
	isReviewer, err := s.engine.IsReviewer(ctx, input.RequestID, input.User)
	if err != nil {
		return err
	}
	output.Set("isReviewer", isReviewer)
	return nil
}

func (s *Service) assignRequest(ctx context.Context, input *AssignInput, output *Output) error {
	return s.engine.Assign(ctx, types.PrincipalFrom(ctx), input.RequestID, input.Assignees)
}

func (s *Service) submitReview(ctx context.Context, input *ReviewInput, output *Output) error {
	return s.engine.SubmitReview(ctx, types.PrincipalFrom(ctx), input.RequestID, []byte(input.Data))
}

func (s *Service) getReviews(ctx context.Context, input *RequestInput, output *Output) error {
	reviews, err := s.engine.Reviews(ctx, input.RequestID)
	if err != nil {
		return err
	}
	items := make([]map[string]interface{}, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, map[string]interface{}{"author": review.Author, "reviewJSON": string(review.Payload)})
	}
	output.Set("reviews", items)
	return nil
}

func (s *Service) submitEvaluation(ctx context.Context, input *EvaluationInput, output *Output) error {
	return s.engine.SubmitEvaluation(ctx, types.PrincipalFrom(ctx), input.RequestID, input.Decision, []byte(input.Data))
}

func (s *Service) getEvaluations(ctx context.Context, input *RequestInput, output *Output) error {
	evaluations, err := s.engine.Evaluations(ctx, types.PrincipalFrom(ctx), input.RequestID)
	if err != nil {
		return err
	}
	items := make([]map[string]interface{}, 0, len(evaluations))
	for _, evaluation := range evaluations {
		items = append(items, map[string]interface{}{
			"author":         evaluation.Author,
			"decision":       string(evaluation.Decision),
			"evaluationJSON": string(evaluation.Payload),
		})
	}
	output.Set("evaluations", items)
	return nil
}

// approveRequest acts as the caller; user has to name the caller
func (s *Service) approveRequest(ctx context.Context, input *UserInput, output *Output) error {
	principal := types.PrincipalFrom(ctx)
	if model.PlainUser(input.User) != model.PlainUser(principal) {
		return &workflow.Error{Kind: workflow.KindForbidden, Message: "User does not match the calling user."}
	}
	return s.engine.Approve(ctx, principal, input.RequestID)
}

func (s *Service) cancelRequest(ctx context.Context, input *RequestInput, output *Output) error {
	return s.engine.Cancel(ctx, types.PrincipalFrom(ctx), input.RequestID)
}
