package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()

	assert.Contains(t, s, "drive-pi "+Version)
	assert.Contains(t, s, "commit: "+commit())
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestCommit_PrefersLdflags(t *testing.T) {
	saved := Commit
	t.Cleanup(func() { Commit = saved })

	Commit = "abc1234"
	assert.Equal(t, "abc1234", commit())
}
