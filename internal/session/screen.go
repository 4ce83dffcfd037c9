package session

import (
	"slices"

	"github.com/kriansa/drive-pi/internal/device"
)

// WindowSize is the number of device rows shown at once.
const WindowSize = 3

// Screen is the panel's current view. The set of screens is closed: Home,
// DeviceList, ErrorMessage and ConfirmExit.
type Screen interface {
	screen()
}

// Home is the start screen.
type Home struct{}

// DeviceList shows the partitions found by the last enumeration with one of
// them under the cursor.
type DeviceList struct {
	Devices []device.Device
	Cursor  int
}

// ErrorMessage reports a failed action until the user goes back.
type ErrorMessage struct {
	Text string
}

// ConfirmExit asks before quitting.
type ConfirmExit struct{}

func (Home) screen()         {}
func (DeviceList) screen()   {}
func (ErrorMessage) screen() {}
func (ConfirmExit) screen()  {}

// Current returns the device under the cursor, false on an empty list.
func (l DeviceList) Current() (device.Device, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Devices) {
		return device.Device{}, false
	}
	return l.Devices[l.Cursor], true
}

// Visible returns up to n devices starting at the cursor.
func (l DeviceList) Visible(n int) []device.Device {
	if l.Cursor < 0 || l.Cursor >= len(l.Devices) || n <= 0 {
		return nil
	}
	end := min(l.Cursor+n, len(l.Devices))
	return l.Devices[l.Cursor:end]
}

func (l DeviceList) next() DeviceList {
	if len(l.Devices) == 0 {
		return l
	}
	l.Cursor = (l.Cursor + 1) % len(l.Devices)
	return l
}

func (l DeviceList) prev() DeviceList {
	if len(l.Devices) == 0 {
		return l
	}
	l.Cursor = (l.Cursor - 1 + len(l.Devices)) % len(l.Devices)
	return l
}

func (l DeviceList) clone() DeviceList {
	l.Devices = slices.Clone(l.Devices)
	return l
}

// newDeviceList builds a list keeping the cursor index, clamped to the new
// length.
func newDeviceList(devices []device.Device, cursor int) DeviceList {
	if devices == nil {
		devices = []device.Device{}
	}
	cursor = max(0, min(cursor, len(devices)-1))
	return DeviceList{Devices: devices, Cursor: cursor}
}
