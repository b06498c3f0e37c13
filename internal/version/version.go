// Package version exposes build metadata stamped in via ldflags.
package version

// Overridden by the release build; the zero values identify a local build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
