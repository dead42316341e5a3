// Package coarsetime is a cheap time.Now for bookkeeping that tolerates
// a few tens of milliseconds of error, such as connection idle times.
package coarsetime

import (
	"sync/atomic"
	"time"
)

// Resolution is the refresh interval of Now.
const Resolution = 50 * time.Millisecond

var now atomic.Int64 // unix nanoseconds

func init() {
	now.Store(time.Now().UnixNano())

	go func() {
		for t := range time.Tick(Resolution) {
			now.Store(t.UnixNano())
		}
	}()
}

// Now returns the current time, at most Resolution old.
func Now() time.Time {
	return time.Unix(0, now.Load())
}
