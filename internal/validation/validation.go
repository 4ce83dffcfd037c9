package validation

import (
	"fmt"
	"regexp"
)

// MaxNameLength is the longest kernel block device name (DISK_NAME_LEN - 1).
const MaxNameLength = 31

// blockNamePattern matches kernel block device names such as sda1,
// mmcblk0p2, nvme0n1p3 or dm-0.
var blockNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.:-]*$`)

// ValidateDeviceName checks that a device name is safe to use both as
// /dev/<name> and as a directory name under the mount root:
// - Starts with alphanumeric, continues with alphanumeric, underscore, dot, colon or hyphen
// - At most 31 characters
// - Is not a relative path element
func ValidateDeviceName(name string) error {
	if name == "" {
		return fmt.Errorf("device name must not be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("device name must be at most %d characters", MaxNameLength)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("device name %q is a relative path element", name)
	}

	if !blockNamePattern.MatchString(name) {
		return fmt.Errorf("device name %q must start with alphanumeric and contain only alphanumeric, underscore, dot, colon or hyphen characters", name)
	}

	return nil
}
