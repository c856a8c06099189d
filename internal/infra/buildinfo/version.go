package buildinfo

import (
	"runtime/debug"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"

	// GoVersion is the Go version used to build.
	GoVersion = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
}

var (
	embedded     Info
	embeddedOnce sync.Once
)

// readEmbedded extracts VCS and toolchain details recorded by the Go
// toolchain. Missing settings stay empty.
func readEmbedded() Info {
	embeddedOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		embedded.GoVersion = bi.GoVersion
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			embedded.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				embedded.Commit = s.Value
			case "vcs.time":
				embedded.BuildTime = s.Value
			case "vcs.modified":
				embedded.Modified = s.Value == "true"
			}
		}
	})
	return embedded
}

// Get returns the build information. Values injected via ldflags take
// precedence over the embedded module build information.
func Get() Info {
	e := readEmbedded()
	return Info{
		Version:   pick(Version, "dev", e.Version),
		Commit:    shortCommit(pick(Commit, "unknown", e.Commit)),
		BuildTime: pick(BuildTime, "unknown", e.BuildTime),
		GoVersion: pick(GoVersion, "unknown", e.GoVersion),
		Modified:  e.Modified,
	}
}

// String returns a formatted version string.
func String() string {
	info := Get()
	s := info.Version + " (" + info.Commit + ") built at " + info.BuildTime
	if info.Modified {
		s += " [modified]"
	}
	return s
}

func pick(injected, unset, fallback string) string {
	if injected != unset || fallback == "" {
		return injected
	}
	return fallback
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
