// Package version exposes build metadata. The string variables are set at
// link time, e.g.
//
//	go build -ldflags "-X ItemStore/internal/version.Version=1.2.0 -X ItemStore/internal/version.Commit=$(git rev-parse HEAD)"
//
// Unset values fall back to the module build info where available.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const Name = "itemstore"

var (
	Version   = "dev"
	DeployTag = "local"
	BuildTime = "unknown"
	Branch    = "unknown"
	Commit    = "unknown"
)

type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	DeployTag string `json:"deploy_tag"`
	BuildTime string `json:"build_time"`
	Branch    string `json:"branch"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		DeployTag: DeployTag,
		BuildTime: BuildTime,
		Branch:    Branch,
		Commit:    Commit,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// String is the one-line form printed by --version.
func (i Info) String() string {
	return fmt.Sprintf("%s %s %s %s %s", i.Name, i.Version, i.BuildTime, i.Branch, i.Commit)
}

func (i Info) Pretty() string {
	return fmt.Sprintf("Version information:\n  name: %s\n  version: %s\n  deploy tag: %s\n  build time: %s\n  branch: %s\n  commit: %s\n  go version: %s",
		i.Name, i.Version, i.DeployTag, i.BuildTime, i.Branch, i.Commit, i.GoVersion)
}
