// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
	"github.com/bureau-foundation/robodash/lib/tfview"
)

type treeParams struct {
	commonParams
	cli.JSONOutput
	Width  int
	Filter string
	Fuzzy  bool
}

// treeRow is the JSON form of one tree line.
type treeRow struct {
	Frame     tf.FrameID `json:"frame"`
	Depth     int        `json:"depth"`
	Root      bool       `json:"root,omitempty"`
	Synthetic bool       `json:"synthetic,omitempty"`
	Static    bool       `json:"static,omitempty"`
	AgeMillis int64      `json:"age_ms"`
	Freshness string     `json:"freshness,omitempty"`
	Distance  float64    `json:"distance"`
}

type treeResult struct {
	Scenario  string       `json:"scenario"`
	Roots     []tf.FrameID `json:"roots"`
	HasCycles bool         `json:"has_cycles"`
	Rows      []treeRow    `json:"rows"`
}

func treeCommand(streams IO) *cli.Command {
	var params treeParams
	return &cli.Command{
		Name:    "tree",
		Summary: "Print the transform frame tree of a scenario",
		Description: `Replay a scenario's transforms and print the resulting frame tree.

Each edge shows its age at the end of the scenario and is coloured by
freshness band. Frames promoted to roots because nothing else reached
them are marked synthetic.`,
		Usage: "robodash tree <scenario> [flags]",
		Examples: []cli.Example{
			{Description: "Show the tree ten seconds after the last update", Command: "robodash tree warehouse.jsonc --after 10s"},
			{Description: "Only frames matching camera, with their ancestors", Command: "robodash tree warehouse --filter camera"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("tree", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddJSONFlag(flagSet)
			flagSet.IntVar(&params.Width, "width", 100, "maximum line width")
			flagSet.StringVar(&params.Filter, "filter", "", "only show frames matching this query and their ancestors")
			flagSet.BoolVar(&params.Fuzzy, "fuzzy", false, "fuzzy match --filter")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: robodash tree <scenario>")
			}
			return runTree(context.Background(), streams, args[0], &params)
		},
	}
}

func runTree(ctx context.Context, streams IO, argument string, params *treeParams) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	s, err := openScenario(argument, cfg)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg.Logging.Level, cfg.Logging.Format).With("command", "tree", "scenario", s.Name)

	session, err := newSession(s, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer session.close()
	if err := session.ingestFrames(ctx, params.After); err != nil {
		return err
	}

	d := session.dashboard
	snapshot := tfview.FromStore(d.Frames(), session.clock, d.Thresholds())()
	rows := tfview.Rows(snapshot)
	if params.Filter != "" {
		matcher := graphlayout.NewMatcher(params.Filter, graphlayout.SearchOptions{Fuzzy: params.Fuzzy || cfg.Graph.FuzzySearch})
		rows = tfview.FilterRows(rows, snapshot.Tree, func(frame tf.FrameID) bool {
			return matcher.Match(string(frame))
		})
	}

	result := treeResult{
		Scenario:  s.Name,
		Roots:     snapshot.Tree.Roots,
		HasCycles: snapshot.Tree.HasCycles,
		Rows:      make([]treeRow, 0, len(rows)),
	}
	for _, row := range rows {
		entry := treeRow{
			Frame:     row.Frame,
			Depth:     row.Depth,
			Root:      row.IsRoot,
			Synthetic: row.Synthetic,
			Static:    row.Static,
			Distance:  row.Distance,
		}
		if row.HasEdge && !row.Static {
			entry.AgeMillis = row.Age.Milliseconds()
			entry.Freshness = row.Freshness.String()
		}
		result.Rows = append(result.Rows, entry)
	}
	if done, err := params.EmitJSON(streams.Stdout, result); done {
		return err
	}

	renderer := tfview.NewRenderer(tfview.DefaultTheme, params.lipglossRenderer(streams.Stdout))
	fmt.Fprintln(streams.Stdout, renderer.Tree(rows, params.Width))
	if snapshot.Tree.HasCycles {
		fmt.Fprintln(streams.Stderr, "warning: the transform graph contains cycles")
	}
	return nil
}
