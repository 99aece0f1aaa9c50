package info

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Version and Commit are stamped at link time:
//
//	go build -ldflags "-X github.com/drblury/todoweaver/info.Version=v1.0.0"
var (
	Version = ""
	Commit  = ""
)

// BuildInfo is the payload served by the version endpoint.
type BuildInfo struct {
	Module    string `json:"module,omitempty"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

var readBuildInfo = sync.OnceValue(func() BuildInfo {
	info := BuildInfo{Version: Version, Commit: Commit}

	bi, ok := debug.ReadBuildInfo()
	if ok {
		info.Module = bi.Main.Path
		info.GoVersion = bi.GoVersion
		if info.Version == "" {
			info.Version = bi.Main.Version
		}
		if info.Commit == "" {
			for _, setting := range bi.Settings {
				if setting.Key == "vcs.revision" {
					info.Commit = setting.Value
					break
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = "(devel)"
	}
	if info.GoVersion == "" {
		info.GoVersion = runtime.Version()
	}
	return info
})

// ReadBuildInfo reports the linker stamped version, falling back to the module
// build information embedded by the Go toolchain.
func ReadBuildInfo() BuildInfo {
	return readBuildInfo()
}
