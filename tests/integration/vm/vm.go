//go:build integration

// Package vm boots the guest the panel is exercised in.
package vm

import (
	"context"
	"time"
)

// VM is a running guest reachable over SSH with one blank removable disk
// attached next to its root disk.
type VM interface {
	Run(cmd string) (string, error)
	RunWithTimeout(ctx context.Context, cmd string, timeout time.Duration) (string, error)
	CopyFile(localPath, remotePath string) error
	// RemovableDisk is the guest device path of the blank disk, e.g. /dev/vdb.
	RemovableDisk() string
	Stop()
	IsRunning() bool
	WaitForSSH(ctx context.Context) error
}
