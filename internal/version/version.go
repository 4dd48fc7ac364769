// Package version reports build metadata injected through ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version (set by ldflags during build)
	Version = "dev"
	// Commit is the git commit hash (set by ldflags during build)
	Commit = "unknown"
	// Date is the build date (set by ldflags during build)
	Date = "unknown"
)

// Info contains complete version information
type Info struct {
	Version   string `yaml:"version" json:"version"`
	Commit    string `yaml:"commit" json:"commit"`
	Date      string `yaml:"date" json:"date"`
	GoVersion string `yaml:"go_version" json:"go_version"`
	Platform  string `yaml:"platform" json:"platform"`
}

// GetInfo returns complete version information.
// Values not set through ldflags are filled from the module build info,
// so `go install` builds still report a version and commit.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.fromBuildInfo(bi)
	}
	return info
}

func (i Info) fromBuildInfo(bi *debug.BuildInfo) Info {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && i.Commit == "unknown":
			i.Commit = s.Value
		case s.Key == "vcs.time" && i.Date == "unknown":
			i.Date = s.Value
		}
	}
	return i
}

// ShortCommit returns the first 8 characters of the commit hash
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("rolegate %s (%s) built %s with %s for %s",
		i.Version, i.ShortCommit(), i.Date, i.GoVersion, i.Platform)
}

// Short returns just the version number
func (i Info) Short() string {
	return i.Version
}

// UserAgent is sent with every API request
func (i Info) UserAgent() string {
	return fmt.Sprintf("rolegate/%s (%s)", i.Version, i.Platform)
}
