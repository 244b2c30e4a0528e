// Copyright (c) OpenMMLab. All rights reserved.

package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Variables injected at compile time
var (
	Version   = "v0.1.0"
	Commit    = ""      // Git commit hash
	BuildTime = "unset" // Build time
	BuildTag  = "beta"  // Build tag dev alpha beta rc stable hotfix
)

// Info renders the launcher version, preferring compile-time injected
// values and falling back to the VCS data embedded in the binary.
func Info() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("megarun %s-%s\n", Version, BuildTag))

	commit := Commit
	if commit == "" {
		if revision, modified := vcsRevision(); revision != "" {
			commit = revision
			if modified {
				commit += "+localmod"
			}
		}
	}
	if commit != "" {
		b.WriteString(fmt.Sprintf("  - Commit: %s\n", commit))
	}
	b.WriteString(fmt.Sprintf("  - Build Time: %s\n", BuildTime))

	return b.String()
}

// Extract VCS information (commit, modified status)
func vcsRevision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	return revision, modified
}
