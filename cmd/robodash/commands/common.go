// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/robodash/cmd/robodash/cli"
	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/config"
	"github.com/bureau-foundation/robodash/lib/dashboard"
	"github.com/bureau-foundation/robodash/lib/framegraph"
	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/scenario"
	"github.com/bureau-foundation/robodash/lib/worker/rawtopic"
)

// IO carries the streams commands write to. Tests substitute buffers.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

// commonParams are the flags every scenario command accepts.
type commonParams struct {
	ConfigPath string
	NoColor    bool

	// After moves the clock past the scenario's last event, so that
	// edges age into the recent and stale bands.
	After time.Duration
}

func (p *commonParams) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "", "path to robodash.yaml (default: $ROBODASH_CONFIG, then built-in defaults)")
	flagSet.BoolVar(&p.NoColor, "no-color", false, "disable ANSI colors")
	flagSet.DurationVar(&p.After, "after", 0, "time elapsed after the last scenario event")
}

// loadConfig reads --config, then ROBODASH_CONFIG, then falls back to
// the defaults.
func (p *commonParams) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv("ROBODASH_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("loading config: %w", err)
		}
		return nil, cli.Validation("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid config: %w", err)
	}
	return cfg, nil
}

// lipglossRenderer returns a renderer for w honoring --no-color.
func (p *commonParams) lipglossRenderer(w io.Writer) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(w)
	if p.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return renderer
}

// dashboardOptions translates the configuration file into dashboard
// options.
func dashboardOptions(cfg *config.Config, c clock.Clock, logger *slog.Logger) (dashboard.Options, error) {
	fresh, recent, stale, animate, err := cfg.Freshness.Durations()
	if err != nil {
		return dashboard.Options{}, cli.Validation("freshness: %w", err)
	}
	direction, err := graphlayout.ParseDirection(cfg.Layout.Direction)
	if err != nil {
		return dashboard.Options{}, cli.Validation("layout: %w", err)
	}
	cacheSize := cfg.Layout.CacheSize
	if cacheSize == 0 {
		cacheSize = -1
	}
	return dashboard.Options{
		Clock:           c,
		Logger:          logger,
		QueueCapacity:   cfg.Workers.QueueCapacity,
		LayoutCacheSize: cacheSize,
		Thresholds: framegraph.Thresholds{
			Fresh:   fresh,
			Recent:  recent,
			Stale:   stale,
			Animate: animate,
		},
		Layout: graphlayout.Options{
			Direction:  direction,
			NodeWidth:  cfg.Layout.NodeWidth,
			NodeHeight: cfg.Layout.NodeHeight,
			NodeSep:    cfg.Layout.NodeSep,
			RankSep:    cfg.Layout.RankSep,
		},
		PlotMaxPoints: cfg.Workers.Plot.MaxPoints,
		ImageColorMap: cfg.Workers.Image.ColorMap,
		RawTopic: rawtopic.Defaults{
			MaxLength:   cfg.Workers.RawTopic.MaxLength,
			HistorySize: cfg.Workers.RawTopic.HistorySize,
			Highlight:   cfg.Workers.RawTopic.Highlight,
			Style:       cfg.Workers.RawTopic.Style,
		},
	}, nil
}

// openScenario reads argument as a file path, or as a scenario name
// under the configured scenarios directory when no such file exists.
func openScenario(argument string, cfg *config.Config) (*scenario.Scenario, error) {
	path := argument
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = cfg.ScenarioPath(argument)
	}
	s, err := scenario.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("scenario %q not found", argument).
				WithHint(fmt.Sprintf("Pass a .jsonc path or a name under %s.", cfg.Paths.Scenarios))
		}
		return nil, cli.Validation("%w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, cli.Validation("scenario %s: %w", s.Name, err)
	}
	return s, nil
}

// session is a dashboard driven by a fake clock positioned at the
// start of a scenario.
type session struct {
	scenario  *scenario.Scenario
	clock     *clock.FakeClock
	dashboard *dashboard.Dashboard
	start     time.Time
}

func newSession(s *scenario.Scenario, cfg *config.Config, logger *slog.Logger, onUpdate func(dashboard.PanelState)) (*session, error) {
	start := time.Now().UTC().Truncate(time.Millisecond)
	fake := clock.Fake(start)
	options, err := dashboardOptions(cfg, fake, logger)
	if err != nil {
		return nil, err
	}
	options.OnUpdate = onUpdate
	d, err := dashboard.New(options)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return &session{scenario: s, clock: fake, dashboard: d, start: start}, nil
}

// advance is a [scenario.ReplayOptions] Advance hook for the fake clock.
func (s *session) advance(_ context.Context, at time.Time) error {
	s.moveTo(at)
	return nil
}

// moveTo sets the clock forward to at. The clock never runs backwards.
func (s *session) moveTo(at time.Time) {
	if at.After(s.clock.Now()) {
		s.clock.Set(at)
	}
}

// ingestFrames applies every transform in timeline order without
// starting any panel workers, then moves the clock after the last
// event.
func (s *session) ingestFrames(ctx context.Context, after time.Duration) error {
	for _, event := range s.scenario.Timeline(s.start) {
		if event.Transform == nil {
			continue
		}
		s.moveTo(event.At)
		if _, err := s.dashboard.IngestTransforms(ctx, *event.Transform); err != nil {
			return cli.Validation("scenario %s: %w", s.scenario.Name, err)
		}
	}
	s.finish(after)
	return nil
}

// finish positions the clock after the last scenario event.
func (s *session) finish(after time.Duration) {
	s.moveTo(s.start.Add(s.scenario.Duration() + after))
}

func (s *session) close() { s.dashboard.Close() }
