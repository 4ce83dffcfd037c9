package mount

import "fmt"

// MountError is returned when the mount point can't be prepared or the
// device can't be mounted on it.
type MountError struct {
	Device string
	// Output is the diagnostic text of the mount facility, if any
	Output string
	Err    error
}

func (e *MountError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("mount %s: %v: %s", e.Device, e.Err, e.Output)
	}
	return fmt.Sprintf("mount %s: %v", e.Device, e.Err)
}

func (e *MountError) Unwrap() error {
	return e.Err
}

// UnmountError is returned when the unmount facility fails.
type UnmountError struct {
	Device string
	Output string
	Err    error
}

func (e *UnmountError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("unmount %s: %v: %s", e.Device, e.Err, e.Output)
	}
	return fmt.Sprintf("unmount %s: %v", e.Device, e.Err)
}

func (e *UnmountError) Unwrap() error {
	return e.Err
}

// FacilityError carries the diagnostic output of a failed mount(8) or
// umount(8) run.
type FacilityError struct {
	Command string
	Output  string
	Err     error
}

func (e *FacilityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *FacilityError) Unwrap() error {
	return e.Err
}
