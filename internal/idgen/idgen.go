package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// New returns a random UUID string
func New() string {
	return uuid.New().String()
}

// Sequence returns a generator of prefix1, prefix2, ...
func Sequence(prefix string) func() string {
	var counter int64
	return func() string {
		return prefix + strconv.FormatInt(atomic.AddInt64(&counter, 1), 10)
	}
}
