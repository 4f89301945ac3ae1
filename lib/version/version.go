// Package version reports the structview version.
package version

import (
	"runtime/debug"
	"strings"
)

// Version is set with -ldflags on release builds.
var Version = "v0.1.0-HEAD"

// Get returns Version, or the module version recorded by go install when
// Version was left unset.
func Get() string {
	if !strings.HasSuffix(Version, "-HEAD") {
		return Version
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) string {
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return Version
}
