package metadata

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidChange is returned for malformed changes
	ErrInvalidChange = errors.New("metadata: invalid change")

	// ErrNotPermitted is returned when policy forbids writing an attribute
	ErrNotPermitted = errors.New("metadata: attribute not permitted")

	// ErrInvalidTransition is returned for a status change outside the lifecycle graph
	ErrInvalidTransition = errors.New("metadata: invalid status transition")

	// ErrConflict is returned when the current values differ from the expected ones
	ErrConflict = errors.New("metadata: concurrent modification")
)

// Change represents an enqueued attribute replacement
type Change struct {
	ID        string    `json:"id"`
	Principal string    `json:"principal"`
	RequestID string    `json:"requestId"`
	Attribute string    `json:"attribute"`
	Values    []string  `json:"values"`
	Count     int       `json:"count"`
	Guarded   bool      `json:"guarded,omitempty"`
	Expected  []string  `json:"expected,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChangeOption customises a change
type ChangeOption func(c *Change)

// WithExpected guards the change: it applies only when the current values equal expected
func WithExpected(expected []string) ChangeOption {
	return func(c *Change) {
		c.Guarded = true
		c.Expected = append([]string{}, expected...)
	}
}

// Validate checks change integrity
func (c *Change) Validate() error {
	if c.Principal == "" {
		return fmt.Errorf("%w: principal was empty", ErrInvalidChange)
	}
	if c.RequestID == "" {
		return fmt.Errorf("%w: request id was empty", ErrInvalidChange)
	}
	if c.Attribute == "" {
		return fmt.Errorf("%w: attribute was empty", ErrInvalidChange)
	}
	if c.Count != len(c.Values) {
		return fmt.Errorf("%w: expected %d values for %v, but had %d", ErrInvalidChange, c.Count, c.Attribute, len(c.Values))
	}
	return nil
}

// Rejection represents a change the agent did not apply
type Rejection struct {
	Change *Change
	Err    error
}

// Report summarises an ApplyEnqueued run
type Report struct {
	Principal string
	Applied   []*Change
	Rejected  []*Rejection
}

// Err joins all rejection errors, nil when every change was applied
func (r *Report) Err() error {
	if r == nil || len(r.Rejected) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Rejected))
	for _, rejection := range r.Rejected {
		errs = append(errs, fmt.Errorf("%v on %v: %w", rejection.Change.Attribute, rejection.Change.RequestID, rejection.Err))
	}
	return errors.Join(errs...)
}

func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}
