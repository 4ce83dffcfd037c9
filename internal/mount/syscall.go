package mount

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/kriansa/drive-pi/internal/log"
)

// SyscallMounter implements Mounter using Linux syscalls
type SyscallMounter struct {
	basePath string // Base mount path for validation
}

// NewSyscallMounter creates a new syscall-based mounter
func NewSyscallMounter(basePath string) *SyscallMounter {
	return &SyscallMounter{
		basePath: basePath,
	}
}

// Mount mounts the source device to the target directory. The kernel does no
// filesystem detection, so fsType is required.
func (m *SyscallMounter) Mount(_ context.Context, source, target, fsType string) error {
	if err := m.checkTarget(target); err != nil {
		return err
	}

	if fsType == "" {
		return fmt.Errorf("mount %s: unknown filesystem type", source)
	}

	log.Debug("mounting filesystem", "source", source, "target", target, "type", fsType)

	// Mount with no special flags
	if err := unix.Mount(source, target, fsType, 0, ""); err != nil {
		return fmt.Errorf("mount %s to %s: %w", source, target, err)
	}

	log.Debug("mounted successfully", "source", source, "target", target)
	return nil
}

// Unmount unmounts the target directory
func (m *SyscallMounter) Unmount(_ context.Context, target string) error {
	if err := m.checkTarget(target); err != nil {
		return err
	}

	log.Debug("unmounting", "target", target)

	if err := unix.Unmount(target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", target, err)
	}

	log.Debug("unmounted successfully", "target", target)
	return nil
}

// checkTarget validates target is under base path
func (m *SyscallMounter) checkTarget(target string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("get absolute path: %w", err)
	}

	absBase, err := filepath.Abs(m.basePath)
	if err != nil {
		return fmt.Errorf("get absolute base path: %w", err)
	}

	if !strings.HasPrefix(absTarget, absBase+"/") {
		return fmt.Errorf("mount target %q is not under base path %q", target, m.basePath)
	}

	return nil
}
