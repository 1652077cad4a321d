package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at link time via -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders build metadata, filling unset commit and date from the
// embedded VCS info when available.
func String() string {
	commit, date := Commit, Date
	if info, ok := debug.ReadBuildInfo(); ok {
		commit, date = fromSettings(info.Settings, commit, date)
	}
	return fmt.Sprintf("linevox %s (commit=%s, date=%s, go=%s)", Version, commit, date, runtime.Version())
}

func fromSettings(settings []debug.BuildSetting, commit, date string) (string, string) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "none" && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		case "vcs.time":
			if date == "unknown" && s.Value != "" {
				date = s.Value
			}
		}
	}
	return commit, date
}
