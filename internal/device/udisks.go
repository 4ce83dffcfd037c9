package device

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/kriansa/drive-pi/internal/log"
)

const (
	// DBus service and interface constants
	udisks2Service            = "org.freedesktop.UDisks2"
	udisks2Path               = "/org/freedesktop/UDisks2"
	udisks2BlockInterface     = "org.freedesktop.UDisks2.Block"
	udisks2FSInterface        = "org.freedesktop.UDisks2.Filesystem"
	udisks2PartitionInterface = "org.freedesktop.UDisks2.Partition"
	dbusObjectManager         = "org.freedesktop.DBus.ObjectManager"
)

// UDisksEnumerator implements Enumerator using the UDisks2 DBus API
type UDisksEnumerator struct {
	root      string
	conn      DBusConnection
	connectFn func() (DBusConnection, error)
}

// UDisksOption is a functional option for UDisksEnumerator
type UDisksOption func(*UDisksEnumerator)

// WithConnection sets a custom DBus connection (for testing)
func WithConnection(conn DBusConnection) UDisksOption {
	return func(e *UDisksEnumerator) {
		e.conn = conn
		e.connectFn = nil
	}
}

// NewUDisksEnumerator creates an enumerator backed by udisksd
func NewUDisksEnumerator(root string, opts ...UDisksOption) (*UDisksEnumerator, error) {
	e := &UDisksEnumerator{
		root:      root,
		connectFn: ConnectSystemBus,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.conn == nil {
		conn, err := e.connectFn()
		if err != nil {
			return nil, fmt.Errorf("connect to system bus: %w", err)
		}
		e.conn = conn
	}

	return e, nil
}

// Close closes the DBus connection
func (e *UDisksEnumerator) Close() error {
	if e.conn != nil {
		return e.conn.Close()
	}
	return nil
}

// getManagedObjects calls GetManagedObjects on the UDisks2 ObjectManager
// Returns: map[ObjectPath]map[InterfaceName]map[PropertyName]Variant
func (e *UDisksEnumerator) getManagedObjects(ctx context.Context) (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, error) {
	obj := e.conn.Object(udisks2Service, dbus.ObjectPath(udisks2Path))

	var result map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	call := obj.CallWithContext(ctx, dbusObjectManager+".GetManagedObjects", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetManagedObjects: %w", call.Err)
	}

	if err := call.Store(&result); err != nil {
		return nil, fmt.Errorf("store GetManagedObjects result: %w", err)
	}

	return result, nil
}

// List returns all partitions known to udisksd, ordered by device name
func (e *UDisksEnumerator) List(ctx context.Context) ([]Device, error) {
	objects, err := e.getManagedObjects(ctx)
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}

	devices := []Device{}
	for path, interfaces := range objects {
		if _, ok := interfaces[udisks2PartitionInterface]; !ok {
			continue
		}

		blockProps, ok := interfaces[udisks2BlockInterface]
		if !ok {
			return nil, &EnumerationError{Err: fmt.Errorf("partition %s has no block interface", path)}
		}

		dev, err := e.parseBlockProps(blockProps)
		if err != nil {
			return nil, &EnumerationError{Err: fmt.Errorf("partition %s: %w", path, err)}
		}

		var mountpoints []string
		if fsProps, ok := interfaces[udisks2FSInterface]; ok {
			mountpoints = extractMountPoints(fsProps)
		}

		mounted, include := classify(e.root, mountpoints)
		if !include {
			log.Debug("hiding partition mounted outside mount root", "device", dev.Name, "mountpoints", mountpoints)
			continue
		}
		dev.Mounted = mounted

		devices = append(devices, *dev)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name < devices[j].Name
	})

	log.Debug("enumerated devices", "backend", "udisks", "count", len(devices))
	return devices, nil
}

// parseBlockProps creates a Device from the Block interface properties
func (e *UDisksEnumerator) parseBlockProps(props map[string]dbus.Variant) (*Device, error) {
	// Device (required) - NUL terminated byte string, e.g. /dev/sda1
	v, ok := props["Device"]
	if !ok {
		return nil, fmt.Errorf("missing Device property")
	}
	raw, ok := v.Value().([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected Device type %T", v.Value())
	}
	node := strings.TrimRight(string(raw), "\x00")
	if node == "" {
		return nil, fmt.Errorf("empty Device property")
	}

	// Size (required) - bytes
	v, ok = props["Size"]
	if !ok {
		return nil, fmt.Errorf("missing Size property")
	}
	size, ok := v.Value().(uint64)
	if !ok {
		return nil, fmt.Errorf("unexpected Size type %T", v.Value())
	}

	name := filepath.Base(node)
	dev := &Device{
		Name:      name,
		Size:      humanSize(size),
		MountPath: filepath.Join(e.root, name),
	}

	// IdType (optional)
	if v, ok := props["IdType"]; ok {
		if fsType, ok := v.Value().(string); ok {
			dev.FSType = fsType
		}
	}

	return dev, nil
}

// extractMountPoints decodes Filesystem.MountPoints, an array of NUL
// terminated byte strings
func extractMountPoints(props map[string]dbus.Variant) []string {
	v, ok := props["MountPoints"]
	if !ok {
		return nil
	}
	raw, ok := v.Value().([][]byte)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(raw))
	for _, mp := range raw {
		if path := strings.TrimRight(string(mp), "\x00"); path != "" {
			result = append(result, path)
		}
	}
	return result
}

// humanSize formats bytes the way lsblk does: binary units, one decimal
// place unless the value is whole (e.g., "512M", "29.7G").
func humanSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}

	suffixes := "KMGTPE"
	value := float64(bytes)
	i := -1
	for value >= unit && i < len(suffixes)-1 {
		value /= unit
		i++
	}

	s := strconv.FormatFloat(value, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + string(suffixes[i])
}
