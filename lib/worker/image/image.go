// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/worker"
)

// Processor is the image panel [worker.Processor].
type Processor struct {
	defaultColorMap ColorMap
	decompressor    *decompressor
	logger          *slog.Logger
	panels          map[string]*panelState
}

type panelState struct {
	settings Settings
	last     *panel.Message
}

// NewFactory returns a [worker.Factory] for image contexts. The default
// colour map applies to panels that do not choose one.
func NewFactory(defaultColorMap string, logger *slog.Logger) worker.Factory {
	return func() (worker.Processor, error) {
		return New(defaultColorMap, logger)
	}
}

// New creates an image processor.
func New(defaultColorMap string, logger *slog.Logger) (*Processor, error) {
	colorMap, err := ParseColorMap(defaultColorMap)
	if err != nil {
		return nil, err
	}
	decompressor, err := newDecompressor()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		defaultColorMap: colorMap,
		decompressor:    decompressor,
		logger:          logger,
		panels:          make(map[string]*panelState),
	}, nil
}

// Close releases the zstd decoder.
func (p *Processor) Close() error {
	p.decompressor.close()
	return nil
}

// Handle implements [worker.Processor].
func (p *Processor) Handle(command panel.Command) []panel.Response {
	switch command.Type {
	case panel.CommandConfigure:
		return p.configure(command)
	case panel.CommandProcessMessage:
		var message panel.Message
		if err := command.Decode(&message); err != nil {
			return failure(command.PanelID, err)
		}
		state := p.state(command.PanelID)
		response := p.render(command.PanelID, state, message)
		if response.Type != panel.ResponseError {
			state.last = &message
		}
		return []panel.Response{response}
	case panel.CommandReprocess:
		state := p.state(command.PanelID)
		if state.last == nil {
			return nil
		}
		return []panel.Response{p.render(command.PanelID, state, *state.last)}
	case panel.CommandRemovePanel:
		delete(p.panels, command.PanelID)
		return nil
	default:
		return failure(command.PanelID, fmt.Errorf("image worker does not handle %s", command.Type))
	}
}

func (p *Processor) configure(command panel.Command) []panel.Response {
	var config panel.ImageConfig
	if err := command.Decode(&config); err != nil {
		return failure(command.PanelID, err)
	}
	settings, err := p.settings(config)
	if err != nil {
		return failure(command.PanelID, err)
	}
	p.state(command.PanelID).settings = settings

	p.logger.Debug("image panel configured",
		"panel_id", command.PanelID,
		"color_map", settings.ColorMap,
		"rotation", settings.Rotation,
	)
	response, err := panel.NewResponse(panel.ResponseConfigured, command.PanelID, config)
	if err != nil {
		return failure(command.PanelID, err)
	}
	return []panel.Response{response}
}

func (p *Processor) settings(config panel.ImageConfig) (Settings, error) {
	colorMap := p.defaultColorMap
	if config.ColorMap != "" {
		parsed, err := ParseColorMap(config.ColorMap)
		if err != nil {
			return Settings{}, err
		}
		colorMap = parsed
	}
	rotation := ((config.Rotation % 360) + 360) % 360
	if rotation%90 != 0 {
		return Settings{}, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", config.Rotation)
	}
	if config.MinValue != nil && config.MaxValue != nil && *config.MinValue >= *config.MaxValue {
		return Settings{}, fmt.Errorf("min_value %v must be below max_value %v", *config.MinValue, *config.MaxValue)
	}
	return Settings{
		ColorMap:       colorMap,
		Min:            config.MinValue,
		Max:            config.MaxValue,
		Rotation:       rotation,
		FlipHorizontal: config.FlipHorizontal,
		FlipVertical:   config.FlipVertical,
	}, nil
}

func (p *Processor) state(panelID string) *panelState {
	state, ok := p.panels[panelID]
	if !ok {
		state = &panelState{settings: Settings{ColorMap: p.defaultColorMap}}
		p.panels[panelID] = state
	}
	return state
}

func (p *Processor) render(panelID string, state *panelState, message panel.Message) panel.Response {
	if message.Kind != panel.KindImage || message.Image == nil {
		return panel.ErrorResponse(panelID, fmt.Sprintf("image panels need image messages, got %s on %s", message.Kind, message.Topic))
	}
	raw := *message.Image

	data, err := p.decompressor.expand(raw.Compression, raw.Data, expectedSize(raw))
	if err != nil {
		return panel.ErrorResponse(panelID, fmt.Sprintf("%s: %v", message.Topic, err))
	}
	bitmap, err := Decode(raw, data, state.settings)
	if err != nil {
		return panel.ErrorResponse(panelID, fmt.Sprintf("%s: %v", message.Topic, err))
	}

	response, err := panel.NewResponse(panel.ResponseImage, panelID, panel.DecodedImageData{
		Topic:          message.Topic,
		Timestamp:      message.ReceivedAt,
		Width:          bitmap.Width,
		Height:         bitmap.Height,
		Encoding:       "rgba8",
		SourceEncoding: raw.Encoding,
		Data:           bitmap.Pixels,
	})
	if err != nil {
		return panel.ErrorResponse(panelID, err.Error())
	}
	return response
}

func failure(panelID string, err error) []panel.Response {
	return []panel.Response{panel.ErrorResponse(panelID, err.Error())}
}
