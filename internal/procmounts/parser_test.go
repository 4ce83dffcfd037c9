package procmounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `/dev/mmcblk0p2 / ext4 rw,noatime 0 0
/dev/mmcblk0p1 /boot/firmware vfat rw,relatime 0 0
tmpfs /run tmpfs rw,nosuid,nodev 0 0
/dev/sda1 /mnt/drive-pi/sda1 vfat rw,relatime 0 0
/dev/sdb1 /mnt/drive-pi/My\040Disk ext4 rw 0 0
/dev/sdc1 /mnt/drive-pi/sda1/nested ext4 rw 0 0
short line
`

func TestParseReader(t *testing.T) {
	mounts, err := ParseReader(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, mounts, 6)

	assert.Equal(t, Entry{Device: "/dev/mmcblk0p2", MountPoint: "/", FSType: "ext4", Options: "rw,noatime"}, mounts[0])
	assert.Equal(t, "/mnt/drive-pi/My Disk", mounts[4].MountPoint, "octal escapes should be decoded")
}

func TestUnder(t *testing.T) {
	mounts, err := ParseReader(strings.NewReader(sample))
	require.NoError(t, err)

	under := Under(mounts, "/mnt/drive-pi")
	require.Len(t, under, 2)
	assert.Equal(t, "/dev/sda1", under[0].Device)
	assert.Equal(t, "/dev/sdb1", under[1].Device)
	assert.Equal(t, "sda1", under[0].Name())
	assert.Equal(t, "My Disk", under[1].Name())

	assert.Empty(t, Under(mounts, "/srv"))
}

func TestUnescapeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\040b`, "a b"},
		{`a\011b`, "a\tb"},
		{`a\012b`, "a\nb"},
		{`a\134b`, `a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, unescapeField(tt.in))
		})
	}
}
