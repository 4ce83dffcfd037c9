// Package teardown leaves the mount root clean when the panel exits: every
// device under it unmounted and every leftover mount point removed.
package teardown

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kriansa/drive-pi/internal/device"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/procmounts"
)

// Unmounter unmounts devices and knows which mount points it created.
type Unmounter interface {
	Unmount(ctx context.Context, dev device.Device) error
	Created() []string
}

// Manager performs the teardown
type Manager struct {
	devices    device.Enumerator
	mounts     Unmounter
	fs         afero.Fs
	root       string
	mountTable func() ([]procmounts.Entry, error)
	workDir    func() (string, error)
}

// Option configures a Manager
type Option func(*Manager)

// WithMountTable replaces the /proc/mounts reader used when enumeration fails
func WithMountTable(fn func() ([]procmounts.Entry, error)) Option {
	return func(m *Manager) {
		m.mountTable = fn
	}
}

// WithWorkDir replaces os.Getwd
func WithWorkDir(fn func() (string, error)) Option {
	return func(m *Manager) {
		m.workDir = fn
	}
}

// NewManager creates a teardown manager for the given mount root
func NewManager(devices device.Enumerator, mounts Unmounter, fs afero.Fs, root string, opts ...Option) *Manager {
	m := &Manager{
		devices:    devices,
		mounts:     mounts,
		fs:         fs,
		root:       filepath.Clean(root),
		mountTable: procmounts.Parse,
		workDir:    os.Getwd,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run unmounts everything under the mount root and removes the empty mount
// points. Failures are logged and never stop the remaining work.
func (m *Manager) Run(ctx context.Context) {
	log.Debug("teardown started", "root", m.root)

	devices := m.listDevices(ctx)

	unmounted := 0
	for _, dev := range devices {
		if !dev.Mounted {
			continue
		}
		if err := m.mounts.Unmount(ctx, dev); err != nil {
			log.Warn("teardown: unmount failed", "device", dev.Name, "error", err)
			continue
		}
		unmounted++
	}

	removed := m.sweep(devices)

	log.Info("teardown finished", "unmounted", unmounted, "removed", removed)
}

// listDevices enumerates the devices, falling back to the kernel mount table
// for whatever is mounted directly under the root.
func (m *Manager) listDevices(ctx context.Context) []device.Device {
	devices, err := m.devices.List(ctx)
	if err == nil {
		return devices
	}

	log.Warn("teardown: enumeration failed, using mount table", "error", err)

	entries, err := m.mountTable()
	if err != nil {
		log.Warn("teardown: read mount table", "error", err)
		return nil
	}

	var fallback []device.Device
	for _, e := range procmounts.Under(entries, m.root) {
		fallback = append(fallback, device.Device{
			Name:      e.Name(),
			FSType:    e.FSType,
			MountPath: e.MountPoint,
			Mounted:   true,
		})
	}
	return fallback
}

// sweep removes the empty mount points the panel is responsible for, then the
// root itself. The root can be the working directory, so only directories the
// controller created or named after a known partition are touched.
func (m *Manager) sweep(devices []device.Device) int {
	candidates := make(map[string]struct{})
	for _, p := range m.mounts.Created() {
		candidates[filepath.Clean(p)] = struct{}{}
	}
	for _, dev := range devices {
		candidates[filepath.Join(m.root, dev.Name)] = struct{}{}
	}

	removed := 0
	for path := range candidates {
		if filepath.Dir(path) != m.root {
			continue
		}
		if m.removeEmptyDir(path) {
			removed++
		}
	}

	if cwd, err := m.workDir(); err == nil && filepath.Clean(cwd) == m.root {
		log.Debug("teardown: mount root is the working directory, keeping it", "root", m.root)
		return removed
	}

	if m.removeEmptyDir(m.root) {
		removed++
	}
	return removed
}

func (m *Manager) removeEmptyDir(path string) bool {
	isDir, err := afero.DirExists(m.fs, path)
	if err != nil || !isDir {
		return false
	}

	empty, err := afero.IsEmpty(m.fs, path)
	if err != nil {
		log.Warn("teardown: read directory", "path", path, "error", err)
		return false
	}
	if !empty {
		log.Debug("teardown: directory not empty, keeping it", "path", path)
		return false
	}

	if err := m.fs.Remove(path); err != nil {
		log.Warn("teardown: remove directory", "path", path, "error", err)
		return false
	}

	log.Debug("teardown: removed directory", "path", path)
	return true
}
