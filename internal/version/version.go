// Package version reports the CardDex build version.
// Release builds set it with ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/carddex/internal/version.Version=v1.2.3"
package version

import "runtime/debug"

// Version is overridden at build time. "dev" falls back to the module
// version recorded in the binary, if any.
var Version = "dev"

// Get returns the current application version.
func Get() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
