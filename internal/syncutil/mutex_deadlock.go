//go:build deadlock

// Package syncutil provides the mutex used for the panel session. Building with
// the deadlock tag swaps in a lock-order checking implementation.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

const DeadlockEnabled = true

// Mount and unmount can legitimately hold the session lock for a while on
// slow media.
func init() {
	deadlock.Opts.DeadlockTimeout = 2 * time.Minute
}

type Mutex struct {
	deadlock.Mutex
}
