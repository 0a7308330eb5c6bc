package dao

import "errors"

// Storage sentinels; wrap them with %w so callers can use errors.Is
var (
	// ErrNotFound reports a missing object, collection, user or record
	ErrNotFound = errors.New("dao: not found")
	// ErrNilEntity reports an attempt to save a nil record
	ErrNilEntity = errors.New("dao: nil entity")
)
