package version

import (
	"runtime"
	"runtime/debug"
)

// Build information, set with -ldflags "-X". When Commit is not set it is
// taken from the VCS stamp the go tool embeds.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if info.Commit == "unknown" {
		if rev, at, ok := vcsStamp(); ok {
			info.Commit = rev
			if info.BuildTime == "unknown" {
				info.BuildTime = at
			}
		}
	}
	return info
}

func vcsStamp() (revision, at string, ok bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return revision, at, revision != ""
}

// String is the short form logged at startup, e.g. "v1.2.0 (3f2a9c1d0b7e)".
func (i Info) String() string {
	return i.Version + " (" + i.Commit + ")"
}

// UserAgent identifies outbound HTTP and mail traffic.
func UserAgent() string {
	return "coaching-portal/" + Version
}
