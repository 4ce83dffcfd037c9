package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriansa/drive-pi/internal/config"
	"github.com/kriansa/drive-pi/internal/device"
	"github.com/kriansa/drive-pi/internal/display"
	"github.com/kriansa/drive-pi/internal/session"
)

func TestPrintDevices(t *testing.T) {
	var buf bytes.Buffer
	err := printDevices(&buf, []device.Device{
		{Name: "sda1", Size: "32G", MountPath: "/mnt/drive-pi/sda1"},
		{Name: "sdb1", Size: "1.8T", FSType: "exfat", MountPath: "/mnt/drive-pi/sdb1", Mounted: true},
	})
	require.NoError(t, err)

	assert.Equal(t, ""+
		"NAME  SIZE  FSTYPE  MOUNTED  PATH\n"+
		"sda1  32G   -       no       /mnt/drive-pi/sda1\n"+
		"sdb1  1.8T  exfat   yes      /mnt/drive-pi/sdb1\n", buf.String())
}

func TestNewStorage(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	d, err := newStorage(cfg, "/mnt/drive-pi")
	require.NoError(t, err)
	defer d.close()

	assert.IsType(t, &device.LsblkEnumerator{}, d.enumerator)
	assert.Equal(t, "/mnt/drive-pi", d.controller.Root())

	cfg.Mounter = "nfs"
	_, err = newStorage(cfg, "/mnt/drive-pi")
	assert.Error(t, err)
}

func TestNewFrontend_Headless(t *testing.T) {
	cfg := &config.Config{Mode: "headless", SocketPath: "/run/drive-pi.sock"}
	sess := session.New("/mnt/drive-pi", nil, nil, nil)

	disp, sources, err := newFrontend(cfg, sess)
	require.NoError(t, err)

	assert.IsType(t, &display.Nop{}, disp)
	assert.Len(t, sources, 1, "control socket only")
}
