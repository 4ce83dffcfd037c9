// Package device lists the partitions the panel can offer to the user.
package device

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kriansa/drive-pi/internal/command"
)

// Device is one mountable partition.
type Device struct {
	// Name is the kernel block device name (e.g., sda1)
	Name string
	// Size is the capacity as reported by the host, e.g. "32G"
	Size string
	// FSType is the filesystem type if the host knows it, empty otherwise
	FSType string
	// MountPath is where the panel mounts this device (mount root / Name)
	MountPath string
	// Mounted is true if the device has a mountpoint under the mount root
	Mounted bool
}

// SourcePath returns the device node, /dev/<name>.
func (d Device) SourcePath() string {
	return filepath.Join("/dev", d.Name)
}

// Enumerator lists candidate partitions relative to a mount root.
type Enumerator interface {
	// List returns the partitions in host order. Partitions mounted only
	// outside the mount root are left out.
	List(ctx context.Context) ([]Device, error)
}

// EnumerationError is returned when the host listing facility can't be run
// or its output doesn't match the expected schema.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate devices: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// NewEnumerator creates an Enumerator based on the specified backend
func NewEnumerator(backend, root string, exec command.Executor) (Enumerator, error) {
	switch backend {
	case "lsblk":
		return NewLsblkEnumerator(root, exec), nil
	case "udisks":
		return NewUDisksEnumerator(root)
	default:
		return nil, fmt.Errorf("unknown enumerator: %s (use 'lsblk' or 'udisks')", backend)
	}
}

// classify decides whether a partition with the given mountpoints is offered,
// and whether it counts as mounted. A partition mounted somewhere, but nowhere
// under root, belongs to the system (/, /boot, swap...) and is hidden.
func classify(root string, mountpoints []string) (mounted, include bool) {
	if len(mountpoints) == 0 {
		return false, true
	}

	for _, mp := range mountpoints {
		if under(root, mp) {
			return true, true
		}
	}

	return false, false
}

func under(root, path string) bool {
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+"/")
}
