// Package mount creates mount points under the mount root and attaches
// devices to them.
package mount

import (
	"context"
	"fmt"

	"github.com/kriansa/drive-pi/internal/command"
)

// Mounter defines the interface for mount/unmount operations
type Mounter interface {
	// Mount mounts the source device to the target directory. An empty
	// fsType lets the implementation detect it, if it can.
	Mount(ctx context.Context, source, target, fsType string) error
	// Unmount unmounts the target directory
	Unmount(ctx context.Context, target string) error
}

// NewMounter creates a Mounter based on the specified backend
func NewMounter(backend, basePath string, exec command.Executor) (Mounter, error) {
	switch backend {
	case "exec":
		return NewExecMounter(exec), nil
	case "syscall":
		return NewSyscallMounter(basePath), nil
	default:
		return nil, fmt.Errorf("unknown mounter: %s (use 'exec' or 'syscall')", backend)
	}
}
