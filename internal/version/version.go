// Package version carries the build identity stamped in via -ldflags.
package version

import "fmt"

var (
	// Version is the release version of the analysis toolchain
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build identity the way the -version flag prints it.
func String() string {
	return fmt.Sprintf("naics.report %s (%s, built %s)", Version, GitSHA, BuildTime)
}
