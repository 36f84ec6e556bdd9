// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/robodash/lib/dashboard"
)

// ReplayOptions controls [Replay].
type ReplayOptions struct {
	// Start is the wall-clock time of offset zero.
	Start time.Time

	// Advance, when set, is called with each event's time before the
	// event is applied. Callers driving a fake clock set it here;
	// callers pacing a live view sleep here. A non-nil error stops the
	// replay.
	Advance func(ctx context.Context, at time.Time) error

	Logger *slog.Logger
}

// ReplayStats summarises a replay.
type ReplayStats struct {
	Panels     int `json:"panels"`
	Transforms int `json:"transforms"`
	Messages   int `json:"messages"`

	// Deliveries counts message→panel routings.
	Deliveries int `json:"deliveries"`

	// Failures counts events the dashboard rejected. Replay continues
	// past them.
	Failures int `json:"failures"`
}

// Replay adds the scenario's panels to d and feeds it every transform
// and message in timeline order. Per-event failures are logged and
// counted; the returned error reports panel setup failures and
// cancellation.
func Replay(ctx context.Context, s *Scenario, d *dashboard.Dashboard, options ReplayOptions) (ReplayStats, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var stats ReplayStats

	var setupErrors []error
	for _, declared := range s.Panels {
		spec, err := declared.Spec()
		if err == nil {
			err = d.AddPanel(ctx, spec)
		}
		if err != nil {
			setupErrors = append(setupErrors, err)
			continue
		}
		stats.Panels++
	}
	if err := errors.Join(setupErrors...); err != nil {
		return stats, fmt.Errorf("adding panels: %w", err)
	}

	for _, event := range s.Timeline(options.Start) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if options.Advance != nil {
			if err := options.Advance(ctx, event.At); err != nil {
				return stats, err
			}
		}

		switch {
		case event.Transform != nil:
			if _, err := d.IngestTransforms(ctx, *event.Transform); err != nil {
				stats.Failures++
				logger.Warn("transform rejected", "edge", event.Transform.EdgeKey(), "error", err)
				continue
			}
			stats.Transforms++
		case event.Message != nil:
			delivered, err := d.Dispatch(ctx, *event.Message)
			stats.Deliveries += delivered
			if err != nil {
				stats.Failures++
				logger.Warn("message rejected", "topic", event.Message.Topic, "error", err)
				continue
			}
			stats.Messages++
		}
	}
	return stats, nil
}
