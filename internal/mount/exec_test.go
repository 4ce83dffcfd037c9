package mount

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kriansa/drive-pi/internal/testing/mocks"
)

func TestExecMounter_Mount(t *testing.T) {
	tests := []struct {
		name   string
		fsType string
		args   []string
	}{
		{name: "detected type", args: []string{"/dev/sda1", "/mnt/sda1"}},
		{name: "explicit type", fsType: "vfat", args: []string{"-t", "vfat", "/dev/sda1", "/mnt/sda1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mocks.MockCommandExecutor{}
			exec.On("CombinedOutput", mock.Anything, "mount", tt.args).Return([]byte{}, nil).Once()

			m := NewExecMounter(exec)
			require.NoError(t, m.Mount(context.Background(), "/dev/sda1", "/mnt/sda1", tt.fsType))
			exec.AssertExpectations(t)
		})
	}
}

func TestExecMounter_FailureCarriesOutput(t *testing.T) {
	exitErr := errors.New("exit status 32")
	exec := &mocks.MockCommandExecutor{}
	exec.On("CombinedOutput", mock.Anything, "umount", []string{"/mnt/sda1"}).
		Return([]byte("umount: /mnt/sda1: not mounted.\n"), exitErr).Once()

	err := NewExecMounter(exec).Unmount(context.Background(), "/mnt/sda1")

	var facilityErr *FacilityError
	require.ErrorAs(t, err, &facilityErr)
	assert.Equal(t, "umount", facilityErr.Command)
	assert.Equal(t, "umount: /mnt/sda1: not mounted.", facilityErr.Output)
	assert.ErrorIs(t, err, exitErr)
}

func TestNewMounter(t *testing.T) {
	exec := &mocks.MockCommandExecutor{}

	m, err := NewMounter("exec", testRoot, exec)
	require.NoError(t, err)
	assert.IsType(t, &ExecMounter{}, m)

	m, err = NewMounter("syscall", testRoot, exec)
	require.NoError(t, err)
	assert.IsType(t, &SyscallMounter{}, m)

	_, err = NewMounter("fuse", testRoot, exec)
	assert.Error(t, err)
}
