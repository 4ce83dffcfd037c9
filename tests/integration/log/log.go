//go:build integration

// Package log prints progress of the VM harness while tests run.
package log

import (
	"fmt"
	"os"
	"time"
)

var start = time.Now()

// Status prints a progress line prefixed with the time elapsed since the
// harness started. Output goes straight to stdout so it shows up before
// `go test` flushes per-test output.
func Status(format string, args ...any) {
	elapsed := time.Since(start).Round(100 * time.Millisecond)
	_, _ = fmt.Fprintf(os.Stdout, "[%7s] "+format+"\n", append([]any{elapsed}, args...)...)
}
