package mount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyscallMounter_CheckTarget(t *testing.T) {
	m := NewSyscallMounter(testRoot)

	tests := []struct {
		target  string
		wantErr bool
	}{
		{"/mnt/drive-pi/sda1", false},
		{"/mnt/drive-pi/nested/sda1", false},
		{"/mnt/drive-pi", true},
		{"/mnt/drive-pi-other/sda1", true},
		{"/mnt/drive-pi/../sda1", true},
		{"/etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			err := m.checkTarget(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSyscallMounter_RequiresFilesystemType(t *testing.T) {
	m := NewSyscallMounter(testRoot)

	err := m.Mount(context.Background(), "/dev/sda1", "/mnt/drive-pi/sda1", "")
	assert.ErrorContains(t, err, "unknown filesystem type")
}

func TestSyscallMounter_RefusesOutsideRoot(t *testing.T) {
	m := NewSyscallMounter(testRoot)

	assert.ErrorContains(t, m.Mount(context.Background(), "/dev/sda1", "/etc", "ext4"), "not under base path")
	assert.ErrorContains(t, m.Unmount(context.Background(), "/"), "not under base path")
}
