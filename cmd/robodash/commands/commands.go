// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the robodash CLI command tree. Every
// subcommand reads a scenario file, drives a dashboard with it, and
// prints one of the dashboard's views: the frame tree, a path between
// frames, a graph layout, the panels' render state, or a live
// terminal view.
package commands

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/version"
)

// Root builds and returns the complete robodash CLI command tree
// writing to streams.
func Root(streams IO) *cli.Command {
	return &cli.Command{
		Name: "robodash",
		Description: `robodash: robotics telemetry dashboard core.

Inspect transform frame trees, computation graphs and panel worker
output recorded in scenario files.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			treeCommand(streams),
			pathCommand(streams),
			layoutCommand(streams),
			replayCommand(streams),
			viewCommand(streams),
			versionCommand(streams),
		},
	}
}

func versionCommand(streams IO) *cli.Command {
	var output cli.JSONOutput
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			output.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if done, err := output.EmitJSON(streams.Stdout, version.Current()); done {
				return err
			}
			version.Fprint(streams.Stdout, "robodash")
			return nil
		},
	}
}
