// Package procmounts reads the kernel mount table.
package procmounts

import "path/filepath"

// Entry represents an entry in /proc/mounts
type Entry struct {
	Device     string
	MountPoint string
	FSType     string
	Options    string
}

// Name returns the last element of the mount point, which for mounts made
// by the panel is the device name.
func (e Entry) Name() string {
	return filepath.Base(e.MountPoint)
}
