// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/dashboard"
	"github.com/bureau-foundation/robodash/lib/scenario"
	"github.com/bureau-foundation/robodash/lib/tfview"
)

type viewParams struct {
	commonParams
	Interval    time.Duration
	MetricsAddr string
}

func viewCommand(streams IO) *cli.Command {
	var params viewParams
	return &cli.Command{
		Name:    "view",
		Summary: "Watch a scenario's frame tree live",
		Description: `Replay a scenario in real time and show the frame tree in a full-screen
terminal view. Edge ages keep growing after the last update, so frames
fade from fresh to stale as the view runs.

Keys: j/k or arrows to move, / to filter, ctrl+f to toggle fuzzy
filtering, r to refresh, q to quit.`,
		Usage: "robodash view <scenario> [flags]",
		Examples: []cli.Example{
			{Description: "Serve Prometheus metrics while viewing", Command: "robodash view warehouse.jsonc --metrics-addr 127.0.0.1:9464"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("view", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.DurationVar(&params.Interval, "interval", tfview.DefaultRefreshInterval, "refresh interval")
			flagSet.StringVar(&params.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: robodash view <scenario>")
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runView(ctx, streams, args[0], &params)
		},
	}
}

func runView(ctx context.Context, streams IO, argument string, params *viewParams) error {
	cfg, err := params.loadConfig()
	if err != nil {
		return err
	}
	s, err := openScenario(argument, cfg)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg.Logging.Level, cfg.Logging.Format).With("command", "view", "scenario", s.Name)

	realClock := clock.Real()
	options, err := dashboardOptions(cfg, realClock, logger)
	if err != nil {
		return err
	}
	d, err := dashboard.New(options)
	if err != nil {
		return cli.Validation("%w", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if params.MetricsAddr != "" {
		shutdown, err := serveMetrics(params.MetricsAddr)
		if err != nil {
			return err
		}
		defer shutdown()
		logger.Info("serving metrics", "address", params.MetricsAddr)
	}

	replayDone := make(chan error, 1)
	go func() {
		stats, err := scenario.Replay(ctx, s, d, scenario.ReplayOptions{
			Start:   realClock.Now(),
			Advance: sleepUntil,
			Logger:  logger,
		})
		if err == nil {
			logger.Info("scenario finished", "transforms", stats.Transforms, "messages", stats.Messages, "failures", stats.Failures)
		}
		replayDone <- err
	}()

	model := tfview.NewModel(tfview.FromStore(d.Frames(), realClock, d.Thresholds()), tfview.ModelOptions{
		Interval: params.Interval,
		Renderer: params.lipglossRenderer(streams.Stdout),
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(streams.Stdout))
	_, err = program.Run()
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		err = nil
	}
	if replayErr := <-replayDone; replayErr != nil && !errors.Is(replayErr, context.Canceled) {
		return cli.Validation("replaying %s: %w", s.Name, replayErr)
	}
	return err
}

// sleepUntil is a [scenario.ReplayOptions] Advance hook pacing events
// in wall-clock time.
func sleepUntil(ctx context.Context, at time.Time) error {
	wait := time.Until(at)
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serveMetrics exposes the default Prometheus registry on address.
func serveMetrics(address string) (func(), error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, cli.Validation("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go server.Serve(listener)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}, nil
}
