// Package version exposes the application version derived from build
// metadata. Priority: -ldflags override > VCS info from debug.BuildInfo >
// "dev" fallback.
package version

import "runtime/debug"

// AppName is used in version strings and log banners.
const AppName = "orchestrator"

// gitCommitOverride is set via -ldflags for container builds where .git is
// unavailable. Empty string means no override.
var gitCommitOverride string

// GitCommit is the short git commit hash (8 chars) from build info, or "dev"
// when build info is unavailable.
var GitCommit = initGitCommit()

func initGitCommit() string {
	if gitCommitOverride != "" {
		if len(gitCommitOverride) > 8 {
			return gitCommitOverride[:8]
		}
		return gitCommitOverride
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 8 {
				return s.Value[:8]
			}
			return s.Value
		}
	}
	return "dev"
}

// Full returns "orchestrator/<commit>".
func Full() string {
	return AppName + "/" + GitCommit
}
