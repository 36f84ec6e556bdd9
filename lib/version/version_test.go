// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	t.Parallel()
	build := Build{Version: "1.2.0", Commit: "abc123", Time: "2026-10-01T00:00:00Z"}
	if got, want := build.Info(), "1.2.0 (abc123, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info: got %q, want %q", got, want)
	}
	build.Dirty = true
	if got := build.Info(); !strings.Contains(got, "abc123-dirty") {
		t.Errorf("Info: got %q, want dirty marker", got)
	}
}

func TestStampFillsUnknownFields(t *testing.T) {
	t.Parallel()
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-10-19T08:00:00Z"},
	}

	build := Build{Commit: "unknown", Time: "unknown"}
	build.stamp(settings)
	if build.Commit != "0123456789ab" || !build.Dirty || build.Time != "2026-10-19T08:00:00Z" {
		t.Errorf("stamp: got %+v", build)
	}

	injected := Build{Commit: "feedbee", Time: "unknown"}
	injected.stamp(settings)
	if injected.Commit != "feedbee" || injected.Dirty {
		t.Errorf("stamp overrode ldflags values: got %+v", injected)
	}
}

func TestFprintNamesBinary(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	Fprint(&buffer, "robodash")
	if !strings.HasPrefix(buffer.String(), "robodash "+Version) {
		t.Errorf("Fprint: got %q", buffer.String())
	}
	if !strings.Contains(buffer.String(), "Go: ") {
		t.Errorf("Fprint: got %q, want Go version line", buffer.String())
	}
}
