package mount

import (
	"context"
	"strings"

	"github.com/kriansa/drive-pi/internal/command"
	"github.com/kriansa/drive-pi/internal/log"
)

// ExecMounter implements Mounter by running mount(8) and umount(8)
type ExecMounter struct {
	exec command.Executor
}

// NewExecMounter creates a new command-based mounter
func NewExecMounter(exec command.Executor) *ExecMounter {
	return &ExecMounter{
		exec: exec,
	}
}

// Mount runs mount(8). The filesystem type is left to mount's own detection
// unless given.
func (m *ExecMounter) Mount(ctx context.Context, source, target, fsType string) error {
	args := []string{source, target}
	if fsType != "" {
		args = []string{"-t", fsType, source, target}
	}

	log.Debug("mounting filesystem", "source", source, "target", target, "type", fsType)

	if output, err := m.exec.CombinedOutput(ctx, "mount", args...); err != nil {
		return &FacilityError{Command: "mount", Output: strings.TrimSpace(string(output)), Err: err}
	}

	log.Debug("mounted successfully", "source", source, "target", target)
	return nil
}

// Unmount runs umount(8) on the target directory
func (m *ExecMounter) Unmount(ctx context.Context, target string) error {
	log.Debug("unmounting", "target", target)

	if output, err := m.exec.CombinedOutput(ctx, "umount", target); err != nil {
		return &FacilityError{Command: "umount", Output: strings.TrimSpace(string(output)), Err: err}
	}

	log.Debug("unmounted successfully", "target", target)
	return nil
}
