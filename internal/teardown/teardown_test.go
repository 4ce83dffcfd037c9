package teardown

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kriansa/drive-pi/internal/device"
	"github.com/kriansa/drive-pi/internal/mount"
	"github.com/kriansa/drive-pi/internal/procmounts"
	"github.com/kriansa/drive-pi/internal/testing/mocks"
)

const testRoot = "/mnt/drive-pi"

type stubEnumerator struct {
	devices []device.Device
	err     error
}

func (s *stubEnumerator) List(_ context.Context) ([]device.Device, error) {
	return s.devices, s.err
}

type fixture struct {
	fs   afero.Fs
	exec *mocks.MockCommandExecutor
	ctrl *mount.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testRoot, 0o755))
	exec := &mocks.MockCommandExecutor{}
	t.Cleanup(func() { exec.AssertExpectations(t) })
	return &fixture{fs: fs, exec: exec, ctrl: mount.NewController(fs, mount.NewExecMounter(exec), testRoot)}
}

func (f *fixture) manager(enum device.Enumerator, opts ...Option) *Manager {
	opts = append([]Option{WithWorkDir(func() (string, error) { return "/home/pi", nil })}, opts...)
	return NewManager(enum, f.ctrl, f.fs, testRoot, opts...)
}

func (f *fixture) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, path)
	require.NoError(t, err)
	return ok
}

func dev(name string, mounted bool) device.Device {
	return device.Device{Name: name, MountPath: testRoot + "/" + name, Mounted: mounted}
}

func TestRun_UnmountsEverythingAndRemovesRoot(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll(testRoot+"/sda1", 0o755))
	require.NoError(t, f.fs.MkdirAll(testRoot+"/sdb1", 0o755))
	f.exec.On("CombinedOutput", mock.Anything, "umount", []string{testRoot + "/sda1"}).Return([]byte{}, nil).Once()
	f.exec.On("CombinedOutput", mock.Anything, "umount", []string{testRoot + "/sdb1"}).Return([]byte{}, nil).Once()

	enum := &stubEnumerator{devices: []device.Device{dev("sda1", true), dev("sdb1", true), dev("sdc1", false)}}
	f.manager(enum).Run(context.Background())

	assert.False(t, f.exists(t, testRoot+"/sda1"))
	assert.False(t, f.exists(t, testRoot+"/sdb1"))
	assert.False(t, f.exists(t, testRoot), "empty mount root is removed")
}

func TestRun_UnmountFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.exec.On("CombinedOutput", mock.Anything, "umount", []string{testRoot + "/sda1"}).
		Return([]byte("target is busy"), errors.New("exit status 32")).Once()
	f.exec.On("CombinedOutput", mock.Anything, "umount", []string{testRoot + "/sdb1"}).Return([]byte{}, nil).Once()

	enum := &stubEnumerator{devices: []device.Device{dev("sda1", true), dev("sdb1", true)}}

	assert.NotPanics(t, func() { f.manager(enum).Run(context.Background()) })
}

func TestRun_SweepsDirectoryLeftByFailedMount(t *testing.T) {
	f := newFixture(t)
	f.exec.On("CombinedOutput", mock.Anything, "mount", []string{"/dev/sda1", testRoot + "/sda1"}).
		Return([]byte("wrong fs type"), errors.New("exit status 32")).Once()

	require.Error(t, f.ctrl.Mount(context.Background(), dev("sda1", false)))
	require.True(t, f.exists(t, testRoot+"/sda1"))

	// The partition is gone by the time teardown runs
	f.manager(&stubEnumerator{devices: []device.Device{}}).Run(context.Background())

	assert.False(t, f.exists(t, testRoot+"/sda1"))
	assert.False(t, f.exists(t, testRoot))
}

func TestRun_KeepsUnrelatedAndNonEmptyDirectories(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll(testRoot+"/photos", 0o755))
	require.NoError(t, f.fs.MkdirAll(testRoot+"/sdc1", 0o755))
	require.NoError(t, afero.WriteFile(f.fs, testRoot+"/sdc1/file.txt", []byte("data"), 0o644))

	enum := &stubEnumerator{devices: []device.Device{dev("sdc1", false)}}
	f.manager(enum).Run(context.Background())

	assert.True(t, f.exists(t, testRoot+"/photos"), "directories the panel doesn't own are kept")
	assert.True(t, f.exists(t, testRoot+"/sdc1/file.txt"), "non-empty directories are kept")
	assert.True(t, f.exists(t, testRoot))
}

func TestRun_KeepsWorkingDirectoryRoot(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll(testRoot+"/sda1", 0o755))

	enum := &stubEnumerator{devices: []device.Device{dev("sda1", false)}}
	f.manager(enum, WithWorkDir(func() (string, error) { return testRoot + "/", nil })).Run(context.Background())

	assert.False(t, f.exists(t, testRoot+"/sda1"))
	assert.True(t, f.exists(t, testRoot), "working directory is never removed")
}

func TestRun_FallsBackToMountTable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll(testRoot+"/sdb1", 0o755))
	f.exec.On("CombinedOutput", mock.Anything, "umount", []string{testRoot + "/sdb1"}).Return([]byte{}, nil).Once()

	table := func() ([]procmounts.Entry, error) {
		return []procmounts.Entry{
			{Device: "/dev/mmcblk0p2", MountPoint: "/", FSType: "ext4"},
			{Device: "/dev/sdb1", MountPoint: testRoot + "/sdb1", FSType: "vfat"},
			{Device: "/dev/sdc1", MountPoint: "/media/other", FSType: "vfat"},
		}, nil
	}
	enum := &stubEnumerator{err: &device.EnumerationError{Err: errors.New("lsblk missing")}}

	f.manager(enum, WithMountTable(table)).Run(context.Background())

	assert.False(t, f.exists(t, testRoot+"/sdb1"))
	assert.False(t, f.exists(t, testRoot))
}

func TestRun_NothingToDo(t *testing.T) {
	f := newFixture(t)
	table := func() ([]procmounts.Entry, error) { return nil, errors.New("no /proc") }
	enum := &stubEnumerator{err: errors.New("boom")}

	assert.NotPanics(t, func() {
		f.manager(enum, WithMountTable(table)).Run(context.Background())
	})
	assert.False(t, f.exists(t, testRoot))
}

func TestRun_MissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctrl := mount.NewController(fs, mount.NewExecMounter(&mocks.MockCommandExecutor{}), testRoot)
	m := NewManager(&stubEnumerator{devices: []device.Device{}}, ctrl, fs, testRoot)

	assert.NotPanics(t, func() { m.Run(context.Background()) })
}
