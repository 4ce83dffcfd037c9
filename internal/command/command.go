// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"context"
	"os/exec"
)

// Executor runs host facilities (lsblk, mount, umount) so they can be replaced
// in tests.
type Executor interface {
	// Output runs a command and returns its standard output. A non-zero exit
	// status is returned as an *exec.ExitError.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// CombinedOutput runs a command and returns its standard output and
	// standard error interleaved, which is where mount(8) puts diagnostics.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealExecutor uses exec.CommandContext.
type RealExecutor struct{}

//nolint:wrapcheck // callers add the command context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

//nolint:wrapcheck // callers add the command context
func (*RealExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
