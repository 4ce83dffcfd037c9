package mount

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/kriansa/drive-pi/internal/device"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/syncutil"
	"github.com/kriansa/drive-pi/internal/validation"
)

// Controller owns the mount point directories under the mount root and drives
// the Mounter for a device.
type Controller struct {
	mu      syncutil.Mutex
	fs      afero.Fs
	mounter Mounter
	root    string
	created map[string]struct{}
}

// NewController creates a mount controller rooted at root
func NewController(fs afero.Fs, mounter Mounter, root string) *Controller {
	return &Controller{
		fs:      fs,
		mounter: mounter,
		root:    filepath.Clean(root),
		created: make(map[string]struct{}),
	}
}

// Root returns the mount root
func (c *Controller) Root() string {
	return c.root
}

// Mount creates the mount point if it's missing and mounts the device on it.
// If the mount itself fails, the directory is left in place.
func (c *Controller) Mount(ctx context.Context, dev device.Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Debug("mounting device", "device", dev.Name)

	if err := validation.ValidateDeviceName(dev.Name); err != nil {
		return &MountError{Device: dev.Name, Err: err}
	}

	mountPoint, err := c.mountPointPath(dev)
	if err != nil {
		return &MountError{Device: dev.Name, Err: err}
	}

	if err := c.prepareMountPoint(mountPoint); err != nil {
		return &MountError{Device: dev.Name, Err: fmt.Errorf("prepare mount point: %w", err)}
	}

	if err := c.mounter.Mount(ctx, dev.SourcePath(), mountPoint, dev.FSType); err != nil {
		return &MountError{Device: dev.Name, Output: facilityOutput(err), Err: err}
	}

	log.Info("device mounted", "device", dev.Name, "path", mountPoint)
	return nil
}

// Unmount unmounts the device and removes its mount point. Failing to remove
// the directory is only logged.
func (c *Controller) Unmount(ctx context.Context, dev device.Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Debug("unmounting device", "device", dev.Name)

	if err := validation.ValidateDeviceName(dev.Name); err != nil {
		return &UnmountError{Device: dev.Name, Err: err}
	}

	mountPoint, err := c.mountPointPath(dev)
	if err != nil {
		return &UnmountError{Device: dev.Name, Err: err}
	}
	unmountErr := c.mounter.Unmount(ctx, mountPoint)

	// Remove mountpoint directory, never recursively: if the unmount failed
	// the device content is still below it
	if err := c.fs.Remove(mountPoint); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove mountpoint directory", "path", mountPoint, "error", err)
	} else {
		delete(c.created, mountPoint)
	}

	if unmountErr != nil {
		return &UnmountError{Device: dev.Name, Output: facilityOutput(unmountErr), Err: unmountErr}
	}

	log.Info("device unmounted", "device", dev.Name)
	return nil
}

// Created returns the mount point directories this controller created that
// still exist as far as it knows, sorted.
func (c *Controller) Created() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.created))
	for p := range c.created {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// mountPointPath returns the device's mount path, which must be a direct
// child of the mount root
func (c *Controller) mountPointPath(dev device.Device) (string, error) {
	if dev.MountPath == "" {
		return "", fmt.Errorf("no mount path for %s", dev.Name)
	}
	path := filepath.Clean(dev.MountPath)
	if filepath.Dir(path) != c.root {
		return "", fmt.Errorf("mount path %s is not directly under %s", path, c.root)
	}
	return path, nil
}

// prepareMountPoint creates the mount point directory if needed
func (c *Controller) prepareMountPoint(path string) error {
	info, err := c.fs.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("mount point %s exists but is not a directory", path)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat mount point: %w", err)
	}

	if err := c.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create mount point: %w", err)
	}
	c.created[path] = struct{}{}

	return nil
}

func facilityOutput(err error) string {
	var fe *FacilityError
	if errors.As(err, &fe) {
		return fe.Output
	}
	return ""
}
