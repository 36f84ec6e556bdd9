// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command operations
// writing to stderr. Format "auto" picks slog.TextHandler when stderr is
// a terminal and slog.JSONHandler when it is piped or redirected.
// Format "text" and "json" force one handler.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(config.Logging.Level, config.Logging.Format).With(
//	    "command", "replay",
//	    "scenario", s.Name,
//	)
func NewCommandLogger(level, format string) *slog.Logger {
	return newLogger(os.Stderr, level, format, term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(w io.Writer, level, format string, terminal bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(level)}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, options))
	case "text":
		return slog.New(slog.NewTextHandler(w, options))
	}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// ParseLevel maps debug, info, warn and error onto slog levels.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
