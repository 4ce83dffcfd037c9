// Package version reports the build the panel is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at build time
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String is the one-line banner printed by --version and logged at startup.
func String() string {
	return fmt.Sprintf("drive-pi %s (commit: %s, built: %s, go: %s, %s/%s)",
		Version, commit(), BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// commit falls back to the VCS stamp `go build` embeds when ldflags were
// not given, e.g. for `go install`.
func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return s.Value[:12]
		}
	}
	return Commit
}
