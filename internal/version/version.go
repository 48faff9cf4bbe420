// Package version carries the HUD's build identity, stamped at build time
// and reported in the startup log line.
package version

// Set via -ldflags at build time; the defaults mark a developer build.
var (
	// Version is the release version of the HUD binary.
	Version = "0.1.0"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
)
