package session

import (
	"context"

	"github.com/kriansa/drive-pi/internal/device"
)

// mockEnumerator returns its queued results in order, repeating the last one.
type mockEnumerator struct {
	results []enumResult
	calls   int
}

type enumResult struct {
	devices []device.Device
	err     error
}

func (m *mockEnumerator) List(_ context.Context) ([]device.Device, error) {
	if len(m.results) == 0 {
		return []device.Device{}, nil
	}
	r := m.results[min(m.calls, len(m.results)-1)]
	m.calls++
	return r.devices, r.err
}

func (m *mockEnumerator) returns(devices []device.Device, err error) *mockEnumerator {
	m.results = append(m.results, enumResult{devices: devices, err: err})
	return m
}

type mockMounts struct {
	mountErr   error
	unmountErr error
	mounted    []string
	unmounted  []string
}

func (m *mockMounts) Mount(_ context.Context, dev device.Device) error {
	m.mounted = append(m.mounted, dev.Name)
	return m.mountErr
}

func (m *mockMounts) Unmount(_ context.Context, dev device.Device) error {
	m.unmounted = append(m.unmounted, dev.Name)
	return m.unmountErr
}

type mockTeardown struct {
	runs int
}

func (m *mockTeardown) Run(_ context.Context) {
	m.runs++
}
