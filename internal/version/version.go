// Package version carries build-time version information.
package version

import "runtime/debug"

// Version is the semantic version, set at build time via -ldflags.
var Version = "dev"

// String returns the release version, falling back to module build info
// for go-install builds.
func String() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}
