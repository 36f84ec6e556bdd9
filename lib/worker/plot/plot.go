// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package plot assembles time series for plot panels.
//
// Each series extracts one number per message with a field path such
// as "pose.position.x" or "ranges[3]", evaluated by gjson over the
// message's JSON payload. Booleans plot as 0 and 1 and numeric strings
// are parsed; anything else is skipped for that series. A message that
// yields no value for any series produces an ERROR response.
//
// Each series keeps at most MaxPoints samples; the oldest are evicted
// first. A panel with no configured series plots every top-level
// numeric field of its messages.
package plot

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/worker"
)

// DefaultMaxPoints bounds series buffers for panels that do not set
// MaxPoints.
const DefaultMaxPoints = 1000

// Processor is the plot panel [worker.Processor].
type Processor struct {
	defaultMaxPoints int
	logger           *slog.Logger
	panels           map[string]*panelState
}

type panelState struct {
	config panel.PlotConfig
	paths  []string
	series map[string]*ring
}

// NewFactory returns a [worker.Factory] for plot contexts. A
// defaultMaxPoints of zero uses [DefaultMaxPoints].
func NewFactory(defaultMaxPoints int, logger *slog.Logger) worker.Factory {
	return func() (worker.Processor, error) {
		return New(defaultMaxPoints, logger), nil
	}
}

// New creates a plot processor.
func New(defaultMaxPoints int, logger *slog.Logger) *Processor {
	if defaultMaxPoints <= 0 {
		defaultMaxPoints = DefaultMaxPoints
	}
	defaultMaxPoints = min(defaultMaxPoints, panel.MaxPlotPoints)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		defaultMaxPoints: defaultMaxPoints,
		logger:           logger,
		panels:           make(map[string]*panelState),
	}
}

// Handle implements [worker.Processor].
func (p *Processor) Handle(command panel.Command) []panel.Response {
	switch command.Type {
	case panel.CommandConfigure:
		return p.configure(command)
	case panel.CommandProcessMessage:
		return p.process(command)
	case panel.CommandRemovePanel:
		delete(p.panels, command.PanelID)
		return nil
	case panel.CommandGetSeries:
		return reply(panel.ResponseSeries, command.PanelID, p.state(command.PanelID).snapshot())
	case panel.CommandClear:
		state := p.state(command.PanelID)
		for _, buffer := range state.series {
			buffer.clear()
		}
		return reply(panel.ResponseSeries, command.PanelID, state.snapshot())
	default:
		return []panel.Response{panel.ErrorResponse(command.PanelID,
			fmt.Sprintf("plot worker does not handle %s", command.Type))}
	}
}

func (p *Processor) configure(command panel.Command) []panel.Response {
	var config panel.PlotConfig
	if err := command.Decode(&config); err != nil {
		return []panel.Response{panel.ErrorResponse(command.PanelID, err.Error())}
	}
	if err := validate(config); err != nil {
		return []panel.Response{panel.ErrorResponse(command.PanelID, err.Error())}
	}
	if config.MaxPoints <= 0 {
		config.MaxPoints = p.defaultMaxPoints
	}

	previous := p.panels[command.PanelID]
	state := &panelState{
		config: config,
		paths:  make([]string, len(config.Series)),
		series: make(map[string]*ring, len(config.Series)),
	}
	for i, series := range config.Series {
		state.paths[i] = NormalizePath(series.Path)
		buffer := newRing(config.MaxPoints)
		// Reconfiguring keeps the history of series that still exist.
		if previous != nil {
			if old, ok := previous.series[series.ID]; ok {
				for _, sample := range old.samples() {
					buffer.push(sample)
				}
			}
		}
		state.series[series.ID] = buffer
	}
	p.panels[command.PanelID] = state
	p.logger.Debug("plot panel configured",
		"panel_id", command.PanelID,
		"series", len(config.Series),
		"max_points", config.MaxPoints,
	)
	return reply(panel.ResponseConfigured, command.PanelID, config)
}

func validate(config panel.PlotConfig) error {
	seen := make(map[string]bool, len(config.Series))
	for i, series := range config.Series {
		if series.ID == "" {
			return fmt.Errorf("series %d has no id", i)
		}
		if seen[series.ID] {
			return fmt.Errorf("duplicate series id %q", series.ID)
		}
		seen[series.ID] = true
		if strings.TrimSpace(series.Path) == "" {
			return fmt.Errorf("series %q has no field path", series.ID)
		}
	}
	if config.MaxPoints < 0 || config.MaxPoints > panel.MaxPlotPoints {
		return fmt.Errorf("max_points must be between 0 and %d, got %d", panel.MaxPlotPoints, config.MaxPoints)
	}
	return nil
}

// state returns the panel's state, creating an empty default panel for
// ids that were never configured.
func (p *Processor) state(panelID string) *panelState {
	state, ok := p.panels[panelID]
	if !ok {
		state = &panelState{
			config: panel.PlotConfig{MaxPoints: p.defaultMaxPoints},
			series: make(map[string]*ring),
		}
		p.panels[panelID] = state
	}
	return state
}

func (p *Processor) process(command panel.Command) []panel.Response {
	var message panel.Message
	if err := command.Decode(&message); err != nil {
		return []panel.Response{panel.ErrorResponse(command.PanelID, err.Error())}
	}
	if message.Kind != panel.KindStructured {
		return []panel.Response{panel.ErrorResponse(command.PanelID,
			fmt.Sprintf("plot panels need structured messages, got %s on %s", message.Kind, message.Topic))}
	}
	if !gjson.ValidBytes(message.Payload) {
		return []panel.Response{panel.ErrorResponse(command.PanelID,
			fmt.Sprintf("message on %s is not valid JSON", message.Topic))}
	}

	state := p.state(command.PanelID)
	point := panel.PlotDataPoint{Timestamp: message.ReceivedAt, Values: make(map[string]float64)}
	if len(state.config.Series) == 0 {
		state.autoSeries(message, point.Values)
	}
	for i, series := range state.config.Series {
		if series.Topic != "" && series.Topic != message.Topic {
			continue
		}
		value, ok := Extract(message.Payload, state.paths[i])
		if !ok {
			continue
		}
		point.Values[series.ID] = value
		state.series[series.ID].push(panel.Sample{Timestamp: message.ReceivedAt, Value: value})
	}
	if len(point.Values) == 0 {
		return []panel.Response{panel.ErrorResponse(command.PanelID,
			fmt.Sprintf("no numeric series values in message on %s", message.Topic))}
	}
	return reply(panel.ResponsePlotData, command.PanelID, point)
}

// autoSeries plots every top-level numeric field of a message, one
// series per field name. Unconfigured panels use it.
func (state *panelState) autoSeries(message panel.Message, values map[string]float64) {
	gjson.ParseBytes(message.Payload).ForEach(func(key, field gjson.Result) bool {
		if field.Type == gjson.String {
			return true
		}
		value, ok := number(field)
		if !ok {
			return true
		}
		buffer, exists := state.series[key.String()]
		if !exists {
			buffer = newRing(state.config.MaxPoints)
			state.series[key.String()] = buffer
		}
		values[key.String()] = value
		buffer.push(panel.Sample{Timestamp: message.ReceivedAt, Value: value})
		return true
	})
}

func (state *panelState) snapshot() panel.SeriesData {
	data := panel.SeriesData{Series: make(map[string][]panel.Sample, len(state.series))}
	for id, buffer := range state.series {
		data.Series[id] = buffer.samples()
	}
	return data
}

func reply(responseType panel.ResponseType, panelID string, payload any) []panel.Response {
	response, err := panel.NewResponse(responseType, panelID, payload)
	if err != nil {
		return []panel.Response{panel.ErrorResponse(panelID, err.Error())}
	}
	return []panel.Response{response}
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// NormalizePath converts a dotted/bracket field path into gjson syntax:
// "ranges[3]" becomes "ranges.3" and a leading "." or "msg." is
// dropped.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = bracketIndex.ReplaceAllString(path, ".$1")
	path = strings.TrimPrefix(path, ".")
	path = strings.TrimPrefix(path, "msg.")
	return path
}

// Extract reads a number at a gjson path. Booleans are 0 or 1 and
// numeric strings are parsed.
func Extract(payload []byte, path string) (float64, bool) {
	return number(gjson.GetBytes(payload, path))
}

func number(result gjson.Result) (float64, bool) {
	switch result.Type {
	case gjson.Number:
		return result.Num, true
	case gjson.True:
		return 1, true
	case gjson.False:
		return 0, true
	case gjson.String:
		value, err := strconv.ParseFloat(strings.TrimSpace(result.Str), 64)
		if err != nil {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}
