package model

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
)

// DefaultRoot is the collection holding all data requests
const DefaultRoot = "/tempZone/home/datarequests-research"

// ErrInvalidRequestID reports an identifier that does not name a single collection below the root
var ErrInvalidRequestID = errors.New("invalid request id")

// ValidateRequestID checks that requestID is a single path segment
func ValidateRequestID(requestID string) error {
	if requestID == "" || requestID == "." || requestID == ".." || strings.ContainsAny(requestID, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidRequestID, requestID)
	}
	for _, r := range requestID {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q", ErrInvalidRequestID, requestID)
		}
	}
	return nil
}

// Layout maps request identifiers to store paths
type Layout struct {
	Root string
}

// Collection returns the request collection path
func (l Layout) Collection(requestID string) string {
	return path.Join(l.root(), requestID)
}

// Object returns the path of a named object in the request collection
func (l Layout) Object(requestID, name string) string {
	return path.Join(l.root(), requestID, name)
}

// Payload returns the request payload object path
func (l Layout) Payload(requestID string) string {
	return l.Object(requestID, PayloadObject)
}

func (l Layout) root() string {
	if l.Root == "" {
		return DefaultRoot
	}
	return l.Root
}
