//go:build integration

package integration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSignalTeardown stops the panel with SIGTERM while a device is mounted
func TestSignalTeardown(t *testing.T) {
	if output, _ := testVM.Run(fmt.Sprintf("systemctl is-active %s", panelUnit)); output != "active\n" {
		require.NoError(t, startPanel(testVM))
	}

	screen := selectDevice(t, openDevices(t), "vdb1")
	screen = press(t, "C")
	require.True(t, screen.Current().Mounted)
	require.True(t, isMounted(t, devicePath("vdb1")))

	output, err := testVM.Run(fmt.Sprintf("sudo systemctl kill --signal=SIGTERM %s", panelUnit))
	require.NoError(t, err, output)
	require.NoError(t, waitForSystemdUnitStopped(testVM, panelUnit))

	require.False(t, isMounted(t, devicePath("vdb1")))
	require.False(t, dirExists(t, mountRoot))
}

// TestCleanupCommand recovers from a panel that died without tearing down
func TestCleanupCommand(t *testing.T) {
	setup := fmt.Sprintf("sudo mkdir -p %[1]s && sudo mount /dev/vdb1 %[1]s", devicePath("vdb1"))
	output, err := testVM.Run(setup)
	require.NoError(t, err, output)

	output, err = testVM.Run(fmt.Sprintf("sudo /usr/local/bin/drive-pi --mount-path %s cleanup", mountRoot))
	require.NoError(t, err, output)

	require.False(t, isMounted(t, devicePath("vdb1")))
	require.False(t, dirExists(t, mountRoot))
}
