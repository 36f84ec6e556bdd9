// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
)

func TestToolError_ErrorWithHint(t *testing.T) {
	t.Parallel()
	err := NotFound("frame %q not in scenario %s", "gripper", "warehouse").
		WithHint("Run 'robodash tree warehouse' to list frames.")

	want := "frame \"gripper\" not in scenario warehouse\n\nRun 'robodash tree warehouse' to list frames."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
}

func TestToolError_WrapsCause(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("tree: %w", Internal("reading: %w", fs.ErrNotExist))

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should find the wrapped cause through ToolError")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatal("errors.As should find ToolError in wrapped chain")
	}
	if toolErr.Category != CategoryInternal {
		t.Errorf("Category = %q, want %q", toolErr.Category, CategoryInternal)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()
	err := &ExitError{Code: 3}
	if err.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", err.ExitCode())
	}
	if err.Error() != "exit code 3" {
		t.Errorf("Error() = %q, want %q", err.Error(), "exit code 3")
	}
}

func TestEmitJSON(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	output := JSONOutput{}

	done, err := output.EmitJSON(&buffer, []string(nil))
	if done || err != nil || buffer.Len() != 0 {
		t.Fatalf("EmitJSON without --json: done=%v err=%v output=%q", done, err, buffer.String())
	}

	output.OutputJSON = true
	done, err = output.EmitJSON(&buffer, []string(nil))
	if !done || err != nil {
		t.Fatalf("EmitJSON with --json: done=%v err=%v", done, err)
	}
	if got := strings.TrimSpace(buffer.String()); got != "[]" {
		t.Errorf("nil slice encoded as %q, want []", got)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer

	logger := newLogger(&buffer, "warn", "auto", false)
	logger.Info("dropped")
	logger.Warn("kept", "frame", "odom")
	if strings.Contains(buffer.String(), "dropped") {
		t.Errorf("info record written at warn level: %s", buffer.String())
	}
	if !strings.Contains(buffer.String(), `"frame":"odom"`) {
		t.Errorf("auto format off a terminal should be JSON, got %s", buffer.String())
	}

	buffer.Reset()
	newLogger(&buffer, "info", "text", false).Info("hello", "frame", "odom")
	if !strings.Contains(buffer.String(), "frame=odom") {
		t.Errorf("text format: got %s", buffer.String())
	}

	if got := ParseLevel("DEBUG"); got != slog.LevelDebug {
		t.Errorf("ParseLevel(DEBUG) = %v, want %v", got, slog.LevelDebug)
	}
}
