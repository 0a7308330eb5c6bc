package model

import "fmt"

// Status represents a data request lifecycle state
type Status string

// Status constants
const (
	StatusNone      Status = ""
	StatusSubmitted Status = "submitted"
	StatusAssigned  Status = "assigned"
	StatusReviewed  Status = "reviewed"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
)

var transitions = map[Status][]Status{
	StatusNone:      {StatusSubmitted},
	StatusSubmitted: {StatusAssigned, StatusCanceled},
	StatusAssigned:  {StatusReviewed},
	StatusReviewed:  {StatusApproved, StatusRejected},
}

// CanTransition reports whether to is reachable from s in a single step
func (s Status) CanTransition(to Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusAssigned, StatusReviewed, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// ParseStatus converts text to a status
func ParseStatus(text string) (Status, error) {
	status := Status(text)
	if !status.IsValid() {
		return StatusNone, fmt.Errorf("invalid status: %q", text)
	}
	return status, nil
}
