// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import "time"

// SeriesConfig selects one numeric value per message. Topic restricts
// the series to messages from one topic; empty matches every topic the
// panel is subscribed to. Path is a field path such as
// "pose.position.x" or "ranges[3]".
type SeriesConfig struct {
	ID    string `json:"id"`
	Topic string `json:"topic,omitempty"`
	Path  string `json:"path"`
}

// PlotConfig configures a plot panel.
type PlotConfig struct {
	Series []SeriesConfig `json:"series"`
	// MaxPoints bounds each series buffer. Zero uses the worker default;
	// values above MaxPlotPoints are rejected.
	MaxPoints int `json:"max_points,omitempty"`
}

// MaxPlotPoints is the largest per-series buffer a plot panel may ask
// for.
const MaxPlotPoints = 1_000_000

// PlotDataPoint is one assembled multi-series sample.
type PlotDataPoint struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Sample is one buffered value of a series.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// SeriesData is the full buffered history of a plot panel.
type SeriesData struct {
	Series map[string][]Sample `json:"series"`
}

// ImageConfig configures an image panel. MinValue and MaxValue bound
// the normalisation range for single-channel data; nil means the range
// is computed from each frame.
type ImageConfig struct {
	ColorMap       string   `json:"color_map,omitempty"`
	MinValue       *float64 `json:"min_value,omitempty"`
	MaxValue       *float64 `json:"max_value,omitempty"`
	Rotation       int      `json:"rotation,omitempty"`
	FlipHorizontal bool     `json:"flip_horizontal,omitempty"`
	FlipVertical   bool     `json:"flip_vertical,omitempty"`
}

// DecodedImageData is a displayable RGBA8 bitmap.
type DecodedImageData struct {
	Topic          string    `json:"topic"`
	Timestamp      time.Time `json:"timestamp"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Encoding       string    `json:"encoding"`
	SourceEncoding string    `json:"source_encoding"`
	Data           []byte    `json:"data"`
}

// RawTopicConfig configures a raw-topic panel. Zero values use the
// worker defaults.
type RawTopicConfig struct {
	MaxLength   int    `json:"max_length,omitempty"`
	HistorySize int    `json:"history_size,omitempty"`
	Highlight   bool   `json:"highlight,omitempty"`
	Style       string `json:"style,omitempty"`
}

// FormattedMessage is a display-ready rendering of one message.
type FormattedMessage struct {
	Topic      string    `json:"topic"`
	ReceivedAt time.Time `json:"received_at"`
	Text       string    `json:"text"`
	Truncated  bool      `json:"truncated,omitempty"`
	// Length is the rune length of the full text before truncation.
	Length int `json:"length"`
}

// History is a raw-topic panel's scroll-back, oldest first.
type History struct {
	Entries []FormattedMessage `json:"entries"`
}
