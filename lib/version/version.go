// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time:
//
//	go build -ldflags "-X github.com/bureau-foundation/robodash/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	Version = "0.1.0-dev"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty,omitempty"`
	Time      string `json:"time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the ldflags values. Fields left at their defaults are
// filled from the VCS stamp the go command embeds, when there is one.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		Time:      BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		build.stamp(info.Settings)
	}
	return build
}

func (b *Build) stamp(settings []debug.BuildSetting) {
	if b.Commit != "unknown" {
		return
	}
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			b.Commit = setting.Value[:min(len(setting.Value), 12)]
		case "vcs.modified":
			b.Dirty = setting.Value == "true"
		case "vcs.time":
			if b.Time == "unknown" {
				b.Time = setting.Value
			}
		}
	}
}

// Info returns a formatted version string suitable for --version output.
func (b Build) Info() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.Time)
}

// Fprint writes the version banner for binary to w.
func Fprint(w io.Writer, binary string) {
	build := Current()
	fmt.Fprintf(w, "%s %s\n  Go: %s\n  Platform: %s\n", binary, build.Info(), build.GoVersion, build.Platform)
}
