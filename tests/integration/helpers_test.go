//go:build integration

package integration

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kriansa/drive-pi/tests/integration/panelclient"
)

// press presses a button and returns the resulting screen
func press(t *testing.T, button string) *panelclient.Screen {
	t.Helper()
	screen, err := testClient.Press(button)
	require.NoError(t, err, "press %s should succeed", button)
	return screen
}

// currentScreen returns the screen without pressing anything
func currentScreen(t *testing.T) *panelclient.Screen {
	t.Helper()
	screen, err := testClient.Screen()
	require.NoError(t, err, "screen should succeed")
	return screen
}

// goHome backs out of whatever screen is shown
func goHome(t *testing.T) {
	t.Helper()
	screen := currentScreen(t)
	switch screen.Screen {
	case "devices":
		screen = press(t, "D")
	case "error":
		screen = press(t, "A")
	case "confirm_exit":
		screen = press(t, "B")
	}
	require.Equal(t, "home", screen.Screen)
}

// openDevices goes from Home to the device list
func openDevices(t *testing.T) *panelclient.Screen {
	t.Helper()
	goHome(t)
	screen := press(t, "C")
	require.Equal(t, "devices", screen.Screen, "device list expected, got %v", screen.Lines)
	return screen
}

// selectDevice moves the cursor down to the named device
func selectDevice(t *testing.T, screen *panelclient.Screen, name string) *panelclient.Screen {
	t.Helper()
	target := screen.Find(name)
	require.GreaterOrEqual(t, target, 0, "device %s should be listed", name)

	for range len(screen.Devices) {
		if screen.Cursor == target {
			return screen
		}
		screen = press(t, "B")
	}
	require.Equal(t, target, screen.Cursor, "cursor should reach %s", name)
	return screen
}

// isMounted reports whether something is mounted at path in the VM
func isMounted(t *testing.T, path string) bool {
	t.Helper()
	output, _ := testVM.Run(fmt.Sprintf("findmnt -n -o SOURCE --mountpoint %s", path))
	return strings.TrimSpace(output) != ""
}

// dirExists reports whether path is a directory in the VM
func dirExists(t *testing.T, path string) bool {
	t.Helper()
	output, _ := testVM.Run(fmt.Sprintf("sudo test -d %s && echo -n ok", path))
	return output == "ok"
}

// rootDevice returns the name of the partition mounted at / in the VM
func rootDevice(t *testing.T) string {
	t.Helper()
	output, err := testVM.Run("findmnt -n -o SOURCE /")
	require.NoError(t, err)
	return filepath.Base(strings.TrimSpace(output))
}

// devicePath returns where the panel mounts a device
func devicePath(name string) string {
	return fmt.Sprintf("%s/%s", mountRoot, name)
}
