// Package version reports the build version, set with -ldflags "-X storeroom/pkg/version.version=...".
package version

var version = "dev"

// Version returns the version stamped at build time.
func Version() string {
	return version
}
