// Package version reports the version of the acidbox binaries.
//
// Set the version at build time with
//
//	go build -ldflags "-X github.com/vsariola/acidbox/version.Version=$(git describe --dirty)"
//
// Without it, the VCS revision stamped by the go tool is used.
package version

import (
	"runtime/debug"
	"sync"
)

var Version string

// BuildInfo is the subset of the embedded build information the CLIs print.
type BuildInfo struct {
	Revision  string // short VCS hash, empty if not built from a repository
	Modified  bool
	GoVersion string
}

var readBuildInfo = sync.OnceValue(func() BuildInfo {
	var b BuildInfo
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	b.GoVersion = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Revision = s.Value[:min(7, len(s.Value))]
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
})

// Build returns the build information of the running binary.
func Build() BuildInfo { return readBuildInfo() }

// Hash is the short revision hash, suffixed with -dirty for builds from a
// modified working tree.
func (b BuildInfo) Hash() string {
	if b.Revision != "" && b.Modified {
		return b.Revision + "-dirty"
	}
	return b.Revision
}

// VersionOrHash is Version if it was set at build time, the revision hash
// otherwise.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Build().Hash()
}()
