// Package version holds the build-time version of pkgstamp.
package version

import "strings"

// Version is set at build time:
//
//	go build -ldflags "-X github.com/indaco/pkgstamp/internal/version.Version=1.2.0"
var Version = "dev"

// GetVersion returns the version without a leading "v".
func GetVersion() string {
	return strings.TrimPrefix(strings.TrimSpace(Version), "v")
}
