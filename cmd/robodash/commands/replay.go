// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/dashboard"
	"github.com/bureau-foundation/robodash/lib/scenario"
	"github.com/bureau-foundation/robodash/lib/schema/panel"
)

type replayParams struct {
	commonParams
	cli.JSONOutput
	Timeout time.Duration
	Quiet   time.Duration
	Pixels  bool
}

type replayResult struct {
	Scenario string                 `json:"scenario"`
	Stats    scenario.ReplayStats   `json:"stats"`
	Panels   []dashboard.PanelState `json:"panels"`
}

func replayCommand(streams IO) *cli.Command {
	var params replayParams
	return &cli.Command{
		Name:    "replay",
		Summary: "Replay a scenario through the panel workers",
		Description: `Add a scenario's panels to a dashboard, feed it every transform and
message in timeline order, and print each panel's render state once the
workers have gone quiet.

Exits 1 if any event was rejected.`,
		Usage: "robodash replay <scenario> [flags]",
		Examples: []cli.Example{
			{Description: "Panel states as JSON", Command: "robodash replay warehouse.jsonc --json"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("replay", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddJSONFlag(flagSet)
			flagSet.DurationVar(&params.Timeout, "timeout", 5*time.Second, "maximum time to wait for panel workers")
			flagSet.DurationVar(&params.Quiet, "quiet", 200*time.Millisecond, "workers are done after this long without a response")
			flagSet.BoolVar(&params.Pixels, "pixels", false, "include decoded image pixels in JSON output")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: robodash replay <scenario>")
			}
			return runReplay(context.Background(), streams, args[0], &params)
		},
	}
}

func runReplay(ctx context.Context, streams IO, argument string, params *replayParams) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	s, err := openScenario(argument, cfg)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg.Logging.Level, cfg.Logging.Format).With("command", "replay", "scenario", s.Name)

	updates := make(chan struct{}, 1)
	session, err := newSession(s, cfg, logger, func(dashboard.PanelState) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer session.close()

	stats, err := scenario.Replay(ctx, s, session.dashboard, scenario.ReplayOptions{
		Start:   session.start,
		Advance: session.advance,
		Logger:  logger,
	})
	if err != nil {
		return cli.Validation("replaying %s: %w", s.Name, err)
	}
	session.finish(params.After)
	if !waitQuiet(ctx, updates, params.Quiet, params.Timeout) {
		logger.Warn("panel workers still busy", "timeout", params.Timeout)
	}

	result := replayResult{Scenario: s.Name, Stats: stats, Panels: session.dashboard.Panels()}
	if !params.Pixels {
		for i := range result.Panels {
			if image := result.Panels[i].Image; image != nil {
				stripped := *image
				stripped.Data = nil
				result.Panels[i].Image = &stripped
			}
		}
	}

	if done, err := params.EmitJSON(streams.Stdout, result); !done {
		printReplay(streams, result)
	} else if err != nil {
		return err
	}
	if stats.Failures > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// waitQuiet returns once no signal has arrived on updates for quiet,
// or false once timeout has elapsed.
func waitQuiet(ctx context.Context, updates <-chan struct{}, quiet, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	idle := time.NewTimer(quiet)
	defer idle.Stop()
	for {
		select {
		case <-updates:
			idle.Reset(quiet)
		case <-idle.C:
			return true
		case <-deadline.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

func printReplay(streams IO, result replayResult) {
	stats := result.Stats
	fmt.Fprintf(streams.Stdout, "%s: %d panels, %d transforms, %d messages, %d deliveries, %d failures\n",
		result.Scenario, stats.Panels, stats.Transforms, stats.Messages, stats.Deliveries, stats.Failures)

	for _, state := range result.Panels {
		fmt.Fprintf(streams.Stdout, "\n%s (%s): %d responses, %d errors\n", state.ID, state.Type, state.Responses, state.Errors)
		if state.LastError != "" {
			fmt.Fprintf(streams.Stdout, "  error: %s\n", state.LastError)
		}
		switch state.Type {
		case panel.TypePlot:
			if state.PlotData != nil {
				for _, name := range slices.Sorted(maps.Keys(state.PlotData.Values)) {
					fmt.Fprintf(streams.Stdout, "  %s = %g\n", name, state.PlotData.Values[name])
				}
			}
		case panel.TypeImage:
			if image := state.Image; image != nil {
				fmt.Fprintf(streams.Stdout, "  %s %dx%d %s (from %s)\n",
					image.Topic, image.Width, image.Height, image.Encoding, image.SourceEncoding)
			}
		case panel.TypeRawTopic:
			if formatted := state.Formatted; formatted != nil {
				fmt.Fprintf(streams.Stdout, "  %s:\n", formatted.Topic)
				for line := range strings.SplitSeq(strings.TrimRight(formatted.Text, "\n"), "\n") {
					fmt.Fprintf(streams.Stdout, "    %s\n", line)
				}
			}
		}
	}
}
