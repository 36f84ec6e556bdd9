// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

type pathParams struct {
	commonParams
	cli.JSONOutput
}

type pathResult struct {
	From tf.FrameID   `json:"from"`
	To   tf.FrameID   `json:"to"`
	Path []tf.FrameID `json:"path"`
}

func pathCommand(streams IO) *cli.Command {
	var params pathParams
	return &cli.Command{
		Name:    "path",
		Summary: "Print the chain of frames between two frames",
		Description: `Replay a scenario's transforms and print the frames connecting two
frames, following parent links up to their common ancestor and back
down. Exits 1 when the frames are in different trees.`,
		Usage: "robodash path <scenario> <from> <to> [flags]",
		Examples: []cli.Example{
			{Command: "robodash path warehouse.jsonc map camera_link"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("path", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 3 {
				return cli.Validation("usage: robodash path <scenario> <from> <to>")
			}
			return runPath(context.Background(), streams, args[0], tf.FrameID(args[1]), tf.FrameID(args[2]), &params)
		},
	}
}

func runPath(ctx context.Context, streams IO, argument string, from, to tf.FrameID, params *pathParams) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	s, err := openScenario(argument, cfg)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg.Logging.Level, cfg.Logging.Format).With("command", "path", "scenario", s.Name)

	session, err := newSession(s, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer session.close()
	if err := session.ingestFrames(ctx, params.After); err != nil {
		return err
	}

	frames := session.dashboard.Frames().Frames()
	for _, frame := range []tf.FrameID{from, to} {
		if !slices.Contains(frames, frame) {
			return cli.NotFound("frame %q not in scenario %s", frame, s.Name).
				WithHint("Run 'robodash tree " + argument + "' to list frames.")
		}
	}

	path := session.dashboard.FramePath(from, to)
	if done, err := params.EmitJSON(streams.Stdout, pathResult{From: from, To: to, Path: path}); done {
		if err == nil && len(path) == 0 {
			return &cli.ExitError{Code: 1}
		}
		return err
	}
	if len(path) == 0 {
		fmt.Fprintf(streams.Stderr, "no path from %s to %s\n", from, to)
		return &cli.ExitError{Code: 1}
	}

	names := make([]string, len(path))
	for i, frame := range path {
		names[i] = string(frame)
	}
	fmt.Fprintln(streams.Stdout, strings.Join(names, " → "))
	return nil
}
