// Package version holds the treemerge build information.
package version

import "runtime/debug"

// Set at build time:
//
//	go build -ldflags "-X treemerge/internal/version.Version=0.3.0 -X treemerge/internal/version.Commit=abc123"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// commit returns Commit, falling back to the VCS revision the Go toolchain
// stamped into the binary.
func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if c := commit(); c != "unknown" && len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version banner.
func Full() string {
	return "treemerge version " + Version + "\n" +
		"Commit: " + commit() + "\n" +
		"Built: " + BuildDate
}
