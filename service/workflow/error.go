package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/datarequest/service/auth"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/metadata"
	"github.com/viant/datarequest/service/request"
)

// Kind classifies a workflow failure
type Kind string

// Failure kinds
const (
	KindForbidden      Kind = "AuthorizationFailure"
	KindPrecondition   Kind = "PreconditionFailure"
	KindNotFound       Kind = "NotFound"
	KindAmbiguousState Kind = "AmbiguousState"
	KindStorage        Kind = "StorageFailure"
	KindTransport      Kind = "TransportFailure"
	KindConflict       Kind = "Conflict"
	KindInvalidInput   Kind = "InvalidInput"
	KindInternal       Kind = "InternalError"
)

// Kind sentinels for errors.Is
var (
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrPrecondition   = &Error{Kind: KindPrecondition}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrAmbiguousState = &Error{Kind: KindAmbiguousState}
	ErrStorage        = &Error{Kind: KindStorage}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrInternal       = &Error{Kind: KindInternal}
)

// Error represents a classified workflow failure. Code is the external status
// code when it differs from the generic -1.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Cause   error
}

// Error returns error message
func (e *Error) Error() string {
	message := e.Message
	if message == "" {
		message = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", message, e.Cause)
	}
	return message
}

// Unwrap returns the cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	candidate, ok := target.(*Error)
	if !ok {
		return false
	}
	return candidate.Kind == e.Kind && (candidate.Code == 0 || candidate.Code == e.Code)
}

// KindOf returns the kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var wErr *Error
	if errors.As(err, &wErr) {
		return wErr.Kind
	}
	return KindInternal
}

func newError(kind Kind, code int, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// classify converts a package sentinel into a kind, fallback otherwise
func classify(err error, fallback Kind, message string) error {
	if err == nil {
		return nil
	}
	var wErr *Error
	if errors.As(err, &wErr) {
		return err
	}
	kind := fallback
	switch {
	case errors.Is(err, dao.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, request.ErrAmbiguousState), errors.Is(err, auth.ErrAmbiguousOwner):
		kind = KindAmbiguousState
	case errors.Is(err, request.ErrInvalidPayload), errors.Is(err, metadata.ErrInvalidChange):
		kind = KindInvalidInput
	case errors.Is(err, metadata.ErrConflict):
		kind = KindConflict
	case errors.Is(err, metadata.ErrInvalidTransition):
		kind = KindPrecondition
	case errors.Is(err, metadata.ErrNotPermitted):
		kind = KindForbidden
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindTransport
	}
	return newError(kind, 0, message, err)
}
