package metadata

import (
	"context"
	"fmt"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/policy"
	"github.com/viant/datarequest/service/query"
	"github.com/viant/datarequest/service/store"
)

// Agent applies changes with elevated store rights after validating them
type Agent struct {
	store  store.Service
	policy *policy.Policy
	layout model.Layout
}

// NewAgent creates a privileged agent
func NewAgent(srv store.Service, aPolicy *policy.Policy, layout model.Layout) *Agent {
	return &Agent{store: srv, policy: aPolicy, layout: layout}
}

// DefaultPolicy permits the protected lifecycle attributes only
func DefaultPolicy() *policy.Policy {
	return policy.Only(model.AttributeStatus, model.AttributeReviewers)
}

// Apply validates and writes a single change
func (a *Agent) Apply(ctx context.Context, change *Change) error {
	if err := change.Validate(); err != nil {
		return err
	}
	if !a.policy.Permits(change.Attribute) {
		return fmt.Errorf("%w: %v", ErrNotPermitted, change.Attribute)
	}
	current, err := a.Values(ctx, change.RequestID, change.Attribute)
	if err != nil {
		return err
	}
	if change.Guarded && !sameValues(current, change.Expected) {
		return fmt.Errorf("%w: %v was %v, expected %v", ErrConflict, change.Attribute, current, change.Expected)
	}
	if change.Attribute == model.AttributeStatus {
		if err = a.checkTransition(current, change.Values); err != nil {
			return err
		}
	}
	return a.store.SetAttribute(ctx, a.layout.Payload(change.RequestID), change.Attribute, change.Values...)
}

func (a *Agent) checkTransition(current, values []string) error {
	if len(values) != 1 {
		return fmt.Errorf("%w: expected a single status, but had %d", ErrInvalidTransition, len(values))
	}
	to, err := model.ParseStatus(values[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	from := model.StatusNone
	switch len(current) {
	case 0:
	case 1:
		from = model.Status(current[0])
	default:
		return fmt.Errorf("%w: request has %d status values", ErrInvalidTransition, len(current))
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return nil
}

// Values returns the current attribute values of a request
func (a *Agent) Values(ctx context.Context, requestID, attribute string) ([]string, error) {
	aQuery, err := query.Select(query.MetaDataAttrValue).
		Where("COLL_NAME = ? AND DATA_NAME = ? AND META_DATA_ATTR_NAME = ?", a.layout.Collection(requestID), model.PayloadObject, attribute)
	if err != nil {
		return nil, err
	}
	rows, err := a.store.Query(ctx, aQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v of %v: %w", attribute, requestID, err)
	}
	return rows.Values(query.MetaDataAttrValue), nil
}
