package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Store layout names
const (
	PayloadObject    = "datarequest.json"
	ReviewPrefix     = "review_"
	EvaluationPrefix = "evaluation_"
	ObjectSuffix     = ".json"
)

// Protected attribute names, writable only by the privileged agent
const (
	AttributeStatus    = "status"
	AttributeReviewers = "assignedForReview"
)

// AttributeDecision holds the evaluation decision on an evaluation object
const AttributeDecision = "decision"

// DataRequest represents a researcher's data request
type DataRequest struct {
	ID        string          `json:"id"`
	Status    Status          `json:"status"`
	Owner     string          `json:"owner"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Review represents a committee member's review of a request
type Review struct {
	RequestID string          `json:"requestId"`
	Author    string          `json:"author"`
	Payload   json.RawMessage `json:"payload"`
}

// Evaluation represents a board member's evaluation of a request
type Evaluation struct {
	RequestID string          `json:"requestId"`
	Author    string          `json:"author"`
	Decision  Decision        `json:"decision"`
	Payload   json.RawMessage `json:"payload"`
}

// Decision represents an evaluation outcome
type Decision string

// Decision constants
const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ParseDecision converts text to a decision
func ParseDecision(text string) (Decision, error) {
	switch decision := Decision(text); decision {
	case DecisionApproved, DecisionRejected:
		return decision, nil
	}
	return "", fmt.Errorf("invalid decision: %q, expected %v or %v", text, DecisionApproved, DecisionRejected)
}

// Status returns the request status the decision leads to
func (d Decision) Status() Status {
	if d == DecisionApproved {
		return StatusApproved
	}
	return StatusRejected
}

// ReviewObject returns the review object name of author
func ReviewObject(author string) string {
	return ReviewPrefix + author + ObjectSuffix
}

// EvaluationObject returns the evaluation object name of author
func EvaluationObject(author string) string {
	return EvaluationPrefix + author + ObjectSuffix
}

// Transition represents an applied status change
type Transition struct {
	RequestID string    `json:"requestId"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Principal string    `json:"principal"`
	At        time.Time `json:"at"`
}
