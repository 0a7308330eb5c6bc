// Package clock provides the wall clock used for created-at, queued-at and
// sent-at timestamps.
package clock

import (
	"sync"
	"time"
)

var (
	mux sync.RWMutex
	now = time.Now
)

// Now returns current time
func Now() time.Time {
	mux.RLock()
	defer mux.RUnlock()
	return now()
}

// Freeze pins Now to at until the returned restore is called
func Freeze(at time.Time) (restore func()) {
	mux.Lock()
	previous := now
	now = func() time.Time { return at }
	mux.Unlock()
	return func() {
		mux.Lock()
		now = previous
		mux.Unlock()
	}
}
