package workflow

import (
	"context"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/notify"
)

// Payload attributes identifying the researcher
const (
	AttributeName  = "name"
	AttributeEmail = "email"
)

type researcher struct {
	name  string
	email string
}

func (e *Engine) researcher(ctx context.Context, requestID string) *researcher {
	attributes, err := e.requests.Attributes(ctx, requestID)
	if err != nil {
		e.logger.Warn("failed to read researcher", "requestID", requestID, "error", err)
		return &researcher{}
	}
	ret := &researcher{}
	if values := attributes[AttributeName]; len(values) > 0 {
		ret.name = values[0]
	}
	if values := attributes[AttributeEmail]; len(values) > 0 {
		ret.email = values[0]
	}
	return ret
}

// recipients returns group members except the operational account
func (e *Engine) recipients(ctx context.Context, group string) []string {
	members, err := e.guard.Members(ctx, group)
	if err != nil {
		e.logger.Warn("failed to read group members", "group", group, "error", err)
		return nil
	}
	var result []string
	for _, member := range members {
		if member == e.config.OperationalAccount {
			continue
		}
		result = append(result, member)
	}
	return result
}

// send delivers message; failures are logged and never surface
func (e *Engine) send(ctx context.Context, requestID string, message *notify.Message) {
	if message.To == "" {
		e.logger.Warn("notification without recipient", "requestID", requestID, "subject", message.Subject)
		return
	}
	if err := e.sender.Send(ctx, message); err != nil {
		e.logger.Warn("failed to send notification", "requestID", requestID, "to", message.To, "subject", message.Subject, "error", err)
	}
}

func (e *Engine) notifyReviewed(ctx context.Context, requestID string) {
	aResearcher := e.researcher(ctx, requestID)
	e.send(ctx, requestID, e.templates.ResearcherReviewed(aResearcher.email, aResearcher.name, requestID))
	for _, member := range e.recipients(ctx, e.config.Groups.Board) {
		e.send(ctx, requestID, e.templates.BoardReviewed(member, requestID))
	}
}

func (e *Engine) notifyEvaluated(ctx context.Context, requestID string, decision model.Decision) {
	aResearcher := e.researcher(ctx, requestID)
	managers := e.recipients(ctx, e.config.Groups.DataManagers)
	if decision == model.DecisionRejected {
		contact := ""
		if len(managers) > 0 {
			contact = managers[0]
		}
		e.send(ctx, requestID, e.templates.ResearcherRejected(aResearcher.email, aResearcher.name, requestID, contact))
		return
	}
	e.send(ctx, requestID, e.templates.ResearcherApproved(aResearcher.email, aResearcher.name, requestID))
	for _, manager := range managers {
		e.send(ctx, requestID, e.templates.DataManagerApproved(manager, requestID))
	}
}
