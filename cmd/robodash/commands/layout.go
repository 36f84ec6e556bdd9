// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/compgraph"
	"github.com/bureau-foundation/robodash/lib/dashboard"
	"github.com/bureau-foundation/robodash/lib/graphlayout"
)

const (
	graphFrames      = "frames"
	graphComputation = "computation"
)

type layoutParams struct {
	commonParams
	cli.JSONOutput
	Graph        string
	Direction    string
	Search       string
	Fuzzy        bool
	ShowTopics   bool
	FilterSystem bool

	flags *pflag.FlagSet
}

// graphOptions takes the graph flags the user set and the configured
// defaults for the rest.
func (p *layoutParams) graphOptions(defaults compgraph.Options) compgraph.Options {
	options := defaults
	if p.flags != nil && p.flags.Changed("show-topics") {
		options.ShowTopics = p.ShowTopics
	}
	if p.flags != nil && p.flags.Changed("filter-system") {
		options.FilterSystemNodes = p.FilterSystem
	}
	return options
}

func layoutCommand(streams IO) *cli.Command {
	var params layoutParams
	return &cli.Command{
		Name:    "layout",
		Summary: "Lay out the frame tree or computation graph of a scenario",
		Description: `Compute node positions for one of a scenario's graphs.

--graph frames lays out the transform tree, with each edge decorated by
its freshness at the end of the scenario. --graph computation lays out
the scenario's node/topic snapshot. --search keeps matching nodes and
everything upstream of them.`,
		Usage: "robodash layout <scenario> [flags]",
		Examples: []cli.Example{
			{Description: "Left-to-right frame tree as JSON", Command: "robodash layout warehouse.jsonc --direction LR --json"},
			{Description: "Computation graph without topic vertices", Command: "robodash layout warehouse.jsonc --graph computation --show-topics=false"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("layout", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddJSONFlag(flagSet)
			flagSet.StringVar(&params.Graph, "graph", graphFrames, "graph to lay out: frames or computation")
			flagSet.StringVarP(&params.Direction, "direction", "d", "", "rank direction: TB, BT, LR or RL (default from config)")
			flagSet.StringVarP(&params.Search, "search", "s", "", "keep nodes matching this query and their ancestors")
			flagSet.BoolVar(&params.Fuzzy, "fuzzy", false, "fuzzy match --search")
			flagSet.BoolVar(&params.ShowTopics, "show-topics", true, "draw topics as vertices (computation graph; default from config)")
			flagSet.BoolVar(&params.FilterSystem, "filter-system", true, "hide middleware nodes and topics (computation graph; default from config)")
			params.flags = flagSet
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: robodash layout <scenario>")
			}
			return runLayout(context.Background(), streams, args[0], &params)
		},
	}
}

func runLayout(ctx context.Context, streams IO, argument string, params *layoutParams) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	s, err := openScenario(argument, cfg)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg.Logging.Level, cfg.Logging.Format).With("command", "layout", "scenario", s.Name)

	var override graphlayout.Options
	if params.Direction != "" {
		direction, err := graphlayout.ParseDirection(params.Direction)
		if err != nil {
			return cli.Validation("%w", err)
		}
		override.Direction = direction
	}
	search := dashboard.SearchRequest{Query: params.Search, Fuzzy: params.Fuzzy || cfg.Graph.FuzzySearch}

	session, err := newSession(s, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer session.close()

	var laidOut graphlayout.LaidOutGraph
	switch params.Graph {
	case graphFrames:
		if err := session.ingestFrames(ctx, params.After); err != nil {
			return err
		}
		laidOut, err = session.dashboard.FrameLayout(ctx, dashboard.FrameLayoutRequest{Search: search, Options: override})
	case graphComputation:
		if s.Graph == nil {
			return cli.NotFound("scenario %s has no computation graph", s.Name)
		}
		laidOut, err = session.dashboard.ComputationLayout(ctx, *s.Graph, dashboard.ComputationLayoutRequest{
			Graph: params.graphOptions(compgraph.Options{
				FilterSystemNodes: cfg.Graph.FilterSystemNodes,
				ShowTopics:        cfg.Graph.ShowTopics,
			}),
			Search:  search,
			Options: override,
		})
	default:
		return cli.Validation("unknown graph %q (want %s or %s)", params.Graph, graphFrames, graphComputation)
	}
	if err != nil {
		return cli.Internal("layout: %w", err)
	}
	logger.Debug("laid out graph", "graph", params.Graph, "nodes", len(laidOut.Nodes), "edges", len(laidOut.Edges))

	if done, err := params.EmitJSON(streams.Stdout, laidOut); done {
		return err
	}

	fmt.Fprintf(streams.Stdout, "%s graph: %d nodes, %d edges, %.0fx%.0f\n\n",
		params.Graph, len(laidOut.Nodes), len(laidOut.Edges), laidOut.Width, laidOut.Height)
	tw := tabwriter.NewWriter(streams.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "NODE\tKIND\tX\tY\n")
	for _, node := range laidOut.Nodes {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\n", node.Label, node.Kind, node.Position.X, node.Position.Y)
	}
	tw.Flush()

	if len(laidOut.Edges) == 0 {
		return nil
	}
	fmt.Fprintln(streams.Stdout)
	tw = tabwriter.NewWriter(streams.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "EDGE\tFRESHNESS\tLABEL\n")
	for _, edge := range laidOut.Edges {
		freshness, _ := edge.Attributes[graphlayout.AttributeFreshness].(string)
		label, _ := edge.Attributes[graphlayout.AttributeLabel].(string)
		fmt.Fprintf(tw, "%s → %s\t%s\t%s\n", edge.Source, edge.Target, orDash(freshness), orDash(label))
	}
	tw.Flush()
	return nil
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
