//go:build !deadlock

// Package syncutil provides the mutex used for the panel session. Building with
// the deadlock tag swaps in a lock-order checking implementation.
package syncutil

import "sync"

const DeadlockEnabled = false

type Mutex struct {
	sync.Mutex
}
