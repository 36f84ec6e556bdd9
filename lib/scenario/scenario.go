// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scenario reads robodash scenario files and replays them into
// a [dashboard.Dashboard].
//
// A scenario is a JSONC document (JSON with // and /* */ comments and
// trailing commas) describing a recorded or hand-written session: the
// transforms seen, a computation graph snapshot, the panels open, and
// the telemetry messages delivered. Transforms and messages carry an
// offset in milliseconds from the start of the session so replay can
// reproduce their relative timing.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Scenario
//  2. Validate: structural checks (known panel types, unique ids, one body per message)
//  3. Replay: add panels, then feed the timeline to the dashboard in offset order
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/robodash/lib/dashboard"
	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/schema/rosgraph"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// Scenario is one parsed scenario file.
type Scenario struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	Transforms []Transform        `json:"transforms,omitempty"`
	Graph      *rosgraph.Snapshot `json:"graph,omitempty"`
	Panels     []Panel            `json:"panels,omitempty"`
	Messages   []Message          `json:"messages,omitempty"`
}

// Transform is a parent→child transform observed OffsetMillis into the
// session. A missing rotation is the identity.
type Transform struct {
	Parent       tf.FrameID     `json:"parent"`
	Child        tf.FrameID     `json:"child"`
	Translation  tf.Vec3        `json:"translation"`
	Rotation     *tf.Quaternion `json:"rotation,omitempty"`
	Static       bool           `json:"static,omitempty"`
	OffsetMillis int64          `json:"offset_ms,omitempty"`
}

// Record converts the transform to a record stamped relative to start.
func (transform Transform) Record(start time.Time) tf.TransformRecord {
	rotation := tf.Identity()
	if transform.Rotation != nil {
		rotation = *transform.Rotation
	}
	return tf.TransformRecord{
		Parent:      transform.Parent,
		Child:       transform.Child,
		Translation: transform.Translation,
		Rotation:    rotation,
		IsStatic:    transform.Static,
		ObservedAt:  start.Add(time.Duration(transform.OffsetMillis) * time.Millisecond),
	}
}

// Panel declares a panel open for the whole session. Config is decoded
// according to Type.
type Panel struct {
	ID     string          `json:"id"`
	Type   panel.Type      `json:"type"`
	Topics []string        `json:"topics,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Spec converts the declaration into a dashboard panel spec with a
// typed configuration.
func (p Panel) Spec() (dashboard.PanelSpec, error) {
	spec := dashboard.PanelSpec{ID: p.ID, Type: p.Type, Topics: slices.Clone(p.Topics)}
	if len(p.Config) == 0 {
		return spec, nil
	}
	var err error
	switch p.Type {
	case panel.TypePlot:
		spec.Config, err = decodeConfig[panel.PlotConfig](p.Config)
	case panel.TypeImage:
		spec.Config, err = decodeConfig[panel.ImageConfig](p.Config)
	case panel.TypeRawTopic:
		spec.Config, err = decodeConfig[panel.RawTopicConfig](p.Config)
	default:
		_, err = panel.ParseType(string(p.Type))
	}
	if err != nil {
		return dashboard.PanelSpec{}, fmt.Errorf("panel %s: %w", p.ID, err)
	}
	return spec, nil
}

func decodeConfig[T any](data json.RawMessage) (T, error) {
	var config T
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("decoding config: %w", err)
	}
	return config, nil
}

// Message is one telemetry message delivered OffsetMillis into the
// session. Exactly one of Payload (a JSON document, classified like a
// bridge payload) or Text (an opaque body) is set.
type Message struct {
	Topic        string          `json:"topic"`
	OffsetMillis int64           `json:"offset_ms,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Text         string          `json:"text,omitempty"`
}

// Message converts the entry to a panel message received relative to
// start.
func (m Message) Message(start time.Time) panel.Message {
	receivedAt := start.Add(time.Duration(m.OffsetMillis) * time.Millisecond)
	if len(m.Payload) > 0 {
		return panel.Classify(m.Topic, receivedAt, m.Payload)
	}
	return panel.Message{Topic: m.Topic, Kind: panel.KindUnrecognized, ReceivedAt: receivedAt, Data: []byte(m.Text)}
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Scenario.
func Parse(data []byte) (*Scenario, error) {
	stripped := jsonc.ToJSON(data)

	var scenario Scenario
	if err := json.Unmarshal(stripped, &scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	return &scenario, nil
}

// ReadFile reads and parses a JSONC scenario file. A scenario without a
// name is named after the file.
func ReadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	scenario, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if scenario.Name == "" {
		scenario.Name = NameFromPath(path)
	}

	return scenario, nil
}

// NameFromPath extracts a scenario name from a file path by stripping
// the directory prefix and the file extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}

// Validate checks every transform, panel and message, reporting all
// problems together.
func (s *Scenario) Validate() error {
	var errs []error

	for i, transform := range s.Transforms {
		if err := transform.Record(time.Time{}).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("transforms[%d]: %w", i, err))
		}
		if transform.OffsetMillis < 0 {
			errs = append(errs, fmt.Errorf("transforms[%d]: negative offset_ms", i))
		}
	}

	seen := make(map[string]bool, len(s.Panels))
	for i, declared := range s.Panels {
		spec, err := declared.Spec()
		if err != nil {
			errs = append(errs, fmt.Errorf("panels[%d]: %w", i, err))
			continue
		}
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("panels[%d]: %w", i, err))
		}
		if seen[declared.ID] {
			errs = append(errs, fmt.Errorf("panels[%d]: duplicate panel id %q", i, declared.ID))
		}
		seen[declared.ID] = true
	}

	for i, message := range s.Messages {
		if message.Topic == "" {
			errs = append(errs, fmt.Errorf("messages[%d]: topic is required", i))
		}
		if (len(message.Payload) > 0) == (message.Text != "") {
			errs = append(errs, fmt.Errorf("messages[%d]: exactly one of payload or text is required", i))
		}
		if message.OffsetMillis < 0 {
			errs = append(errs, fmt.Errorf("messages[%d]: negative offset_ms", i))
		}
	}

	return errors.Join(errs...)
}

// Event is one step of a scenario timeline: either a transform or a
// message.
type Event struct {
	At        time.Time
	Transform *tf.TransformRecord
	Message   *panel.Message
}

// Timeline returns the transforms and messages ordered by offset. At
// equal offsets transforms come first, each kind in file order.
func (s *Scenario) Timeline(start time.Time) []Event {
	events := make([]Event, 0, len(s.Transforms)+len(s.Messages))
	for _, transform := range s.Transforms {
		record := transform.Record(start)
		events = append(events, Event{At: record.ObservedAt, Transform: &record})
	}
	for _, entry := range s.Messages {
		message := entry.Message(start)
		events = append(events, Event{At: message.ReceivedAt, Message: &message})
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.At.Compare(b.At)
	})
	return events
}

// Duration is the offset of the last event.
func (s *Scenario) Duration() time.Duration {
	var last int64
	for _, transform := range s.Transforms {
		last = max(last, transform.OffsetMillis)
	}
	for _, message := range s.Messages {
		last = max(last, message.OffsetMillis)
	}
	return time.Duration(last) * time.Millisecond
}
