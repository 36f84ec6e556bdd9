// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/worker"
)

// PanelSpec describes a panel to add.
type PanelSpec struct {
	ID   string     `json:"id"`
	Type panel.Type `json:"type"`

	// Topics the panel subscribes to. Empty subscribes to every topic.
	Topics []string `json:"topics,omitempty"`

	// Config, when set, is sent as the panel's first CONFIGURE. It is
	// one of panel.PlotConfig, panel.ImageConfig or
	// panel.RawTopicConfig.
	Config any `json:"config,omitempty"`
}

// Subscribes reports whether the panel wants messages on topic.
func (spec PanelSpec) Subscribes(topic string) bool {
	return len(spec.Topics) == 0 || slices.Contains(spec.Topics, topic)
}

// Validate checks the panel id and type.
func (spec PanelSpec) Validate() error {
	var errs []error
	if spec.ID == "" {
		errs = append(errs, errors.New("panel id is required"))
	}
	if _, err := panel.ParseType(string(spec.Type)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PanelState is the merged render state of one panel: the latest
// payload of each response kind the panel's worker has produced.
// Pointer fields are replaced, never modified, when new responses
// arrive; callers must not modify them either.
type PanelState struct {
	ID     string     `json:"id"`
	Type   panel.Type `json:"type"`
	Topics []string   `json:"topics,omitempty"`

	// Config is the effective configuration echoed by the worker.
	Config any `json:"config,omitempty"`

	PlotData  *panel.PlotDataPoint    `json:"plot_data,omitempty"`
	Series    *panel.SeriesData       `json:"series,omitempty"`
	Image     *panel.DecodedImageData `json:"image,omitempty"`
	Formatted *panel.FormattedMessage `json:"formatted,omitempty"`
	History   *panel.History          `json:"history,omitempty"`

	LastError string    `json:"last_error,omitempty"`
	Responses uint64    `json:"responses"`
	Errors    uint64    `json:"errors"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// AddPanel registers a panel, starts its type's worker context if
// needed, and sends spec.Config when present.
func (d *Dashboard) AddPanel(ctx context.Context, spec PanelSpec) error {
	_, span := d.tracer.Start(ctx, "dashboard.AddPanel",
		trace.WithAttributes(
			attribute.String("panel_id", spec.ID),
			attribute.String("panel_type", string(spec.Type)),
		),
	)
	defer span.End()

	if err := spec.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid panel")
		return err
	}
	spec.Topics = slices.Clone(spec.Topics)
	entry := &panelEntry{
		spec:  spec,
		state: PanelState{ID: spec.ID, Type: spec.Type, Topics: spec.Topics},
	}

	d.mu.Lock()
	if _, exists := d.panels[spec.ID]; exists {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPanelExists, spec.ID)
	}
	d.panels[spec.ID] = entry
	d.mu.Unlock()

	if err := d.registry.AddPanel(spec.Type, spec.ID, func(response panel.Response) {
		d.merge(entry, response)
	}); err != nil {
		d.mu.Lock()
		delete(d.panels, spec.ID)
		d.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, "worker unavailable")
		return fmt.Errorf("adding panel %s: %w", spec.ID, err)
	}
	d.logger.Info("panel added", "panel_id", spec.ID, "panel_type", spec.Type, "topics", spec.Topics)

	if spec.Config != nil {
		return d.send(spec, panel.CommandConfigure, spec.Config)
	}
	return nil
}

// ConfigurePanel sends a CONFIGURE command with config to the panel.
// The worker echoes the effective configuration as CONFIGURED, or
// reports an ERROR and keeps the previous configuration.
func (d *Dashboard) ConfigurePanel(ctx context.Context, panelID string, config any) error {
	return d.SendPanelCommand(ctx, panelID, panel.CommandConfigure, config)
}

// SendPanelCommand sends an arbitrary command to a panel's worker.
func (d *Dashboard) SendPanelCommand(ctx context.Context, panelID string, commandType panel.CommandType, payload any) error {
	_, span := d.tracer.Start(ctx, "dashboard.SendPanelCommand",
		trace.WithAttributes(
			attribute.String("panel_id", panelID),
			attribute.String("command", string(commandType)),
		),
	)
	defer span.End()

	spec, ok := d.spec(panelID)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrPanelNotFound, panelID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown panel")
		return err
	}
	if err := d.send(spec, commandType, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return err
	}
	return nil
}

func (d *Dashboard) send(spec PanelSpec, commandType panel.CommandType, payload any) error {
	command, err := panel.NewCommand(commandType, spec.ID, payload)
	if err != nil {
		return fmt.Errorf("encoding %s for panel %s: %w", commandType, spec.ID, err)
	}
	if err := d.registry.Send(spec.Type, command); err != nil {
		return fmt.Errorf("sending %s to panel %s: %w", commandType, spec.ID, err)
	}
	return nil
}

// RemovePanel forgets a panel. Responses still in flight for it are
// discarded. Removing an unknown panel returns [ErrPanelNotFound].
func (d *Dashboard) RemovePanel(ctx context.Context, panelID string) error {
	_, span := d.tracer.Start(ctx, "dashboard.RemovePanel",
		trace.WithAttributes(attribute.String("panel_id", panelID)),
	)
	defer span.End()

	d.mu.Lock()
	entry, ok := d.panels[panelID]
	if ok {
		delete(d.panels, panelID)
	}
	d.mu.Unlock()
	if !ok {
		err := fmt.Errorf("%w: %s", ErrPanelNotFound, panelID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown panel")
		return err
	}

	d.logger.Info("panel removed", "panel_id", panelID, "panel_type", entry.spec.Type)
	if err := d.registry.RemovePanel(entry.spec.Type, panelID); err != nil {
		// The panel is already inactive; the worker keeps its state
		// until the context is next terminated.
		d.logger.Warn("notifying worker of panel removal", "panel_id", panelID, "error", err)
	}
	return nil
}

// RenderState returns a copy of the panel's merged render state.
func (d *Dashboard) RenderState(panelID string) (PanelState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.panels[panelID]
	if !ok {
		return PanelState{}, false
	}
	return entry.state.clone(), true
}

// Panels returns the render state of every panel, sorted by id.
func (d *Dashboard) Panels() []PanelState {
	d.mu.Lock()
	defer d.mu.Unlock()
	states := make([]PanelState, 0, len(d.panels))
	for _, id := range slices.Sorted(maps.Keys(d.panels)) {
		states = append(states, d.panels[id].state.clone())
	}
	return states
}

func (d *Dashboard) spec(panelID string) (PanelSpec, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.panels[panelID]
	if !ok {
		return PanelSpec{}, false
	}
	return entry.spec, true
}

func (state PanelState) clone() PanelState {
	state.Topics = slices.Clone(state.Topics)
	return state
}

// merge folds one worker response into entry's render state. Responses
// for an entry that has been removed, or replaced by a panel with the
// same id, are dropped.
func (d *Dashboard) merge(entry *panelEntry, response panel.Response) {
	d.mu.Lock()
	if d.panels[entry.spec.ID] != entry {
		d.mu.Unlock()
		d.logger.Debug("dropped response for removed panel", "panel_id", entry.spec.ID, "response", response.Type)
		return
	}
	state := &entry.state
	if err := apply(state, response); err != nil {
		state.LastError = err.Error()
		state.Errors++
	}
	state.Responses++
	state.UpdatedAt = d.clock.Now()
	snapshot := state.clone()
	d.mu.Unlock()

	if response.Type == panel.ResponseError {
		d.logger.Debug("panel error", "panel_id", entry.spec.ID, "error", response.Error)
	}
	if d.onUpdate != nil {
		d.onUpdate(snapshot)
	}
}

// apply decodes response into the matching state field. An ERROR
// response, or a payload that fails to decode, is returned as an error.
func apply(state *PanelState, response panel.Response) error {
	switch response.Type {
	case panel.ResponseError:
		return errors.New(response.Error)
	case panel.ResponseConfigured:
		config, err := decodeConfig(state.Type, response)
		if err != nil {
			return err
		}
		state.Config = config
	case panel.ResponsePlotData:
		return decodeInto(response, &state.PlotData)
	case panel.ResponseSeries:
		return decodeInto(response, &state.Series)
	case panel.ResponseImage:
		return decodeInto(response, &state.Image)
	case panel.ResponseFormatted:
		return decodeInto(response, &state.Formatted)
	case panel.ResponseHistory:
		return decodeInto(response, &state.History)
	default:
		return fmt.Errorf("unexpected %s response", response.Type)
	}
	return nil
}

func decodeInto[T any](response panel.Response, target **T) error {
	value := new(T)
	if err := response.Decode(value); err != nil {
		return fmt.Errorf("decoding %s: %w", response.Type, err)
	}
	*target = value
	return nil
}

func decodeConfig(panelType panel.Type, response panel.Response) (any, error) {
	switch panelType {
	case panel.TypePlot:
		return decodeValue[panel.PlotConfig](response)
	case panel.TypeImage:
		return decodeValue[panel.ImageConfig](response)
	case panel.TypeRawTopic:
		return decodeValue[panel.RawTopicConfig](response)
	default:
		return nil, fmt.Errorf("%w: %q", worker.ErrUnknownPanelType, panelType)
	}
}

func decodeValue[T any](response panel.Response) (any, error) {
	var value T
	if err := response.Decode(&value); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", response.Type, err)
	}
	return value, nil
}
