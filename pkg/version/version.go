// Package version holds the hm version string, overridden at build time via
// -ldflags "-X github.com/vanderheijden86/huntmap/pkg/version.Version=...".
package version

// Version is the current hm version.
var Version = "0.3.0-dev"
