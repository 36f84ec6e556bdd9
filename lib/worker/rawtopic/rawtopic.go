// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rawtopic formats messages for raw-topic panels.
//
// Structured messages are pretty-printed JSON. Image messages are
// summarised (dimensions, encoding, byte count) rather than dumped.
// Unrecognized payloads are shown as JSON when they parse, as text when
// they are printable UTF-8, and as a hex dump otherwise. Text longer
// than the panel's MaxLength runes is cut and suffixed with a
// truncation marker naming how much was dropped.
//
// Each panel keeps its most recent HistorySize messages in raw form so
// GET_HISTORY can re-render scroll-back with the current settings.
package rawtopic

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/tidwall/pretty"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/worker"
)

const (
	DefaultMaxLength   = 5000
	DefaultHistorySize = 50
	DefaultStyle       = "monokai"
)

// Defaults are the settings applied to panels that leave a field zero.
type Defaults struct {
	MaxLength   int
	HistorySize int
	Highlight   bool
	Style       string
}

func (d Defaults) normalized() Defaults {
	if d.MaxLength <= 0 {
		d.MaxLength = DefaultMaxLength
	}
	if d.HistorySize <= 0 {
		d.HistorySize = DefaultHistorySize
	}
	if d.Style == "" {
		d.Style = DefaultStyle
	}
	return d
}

// Processor is the raw-topic panel [worker.Processor].
type Processor struct {
	defaults Defaults
	logger   *slog.Logger
	panels   map[string]*panelState
}

type panelState struct {
	config  panel.RawTopicConfig
	history []panel.Message
}

// NewFactory returns a [worker.Factory] for raw-topic contexts.
func NewFactory(defaults Defaults, logger *slog.Logger) worker.Factory {
	return func() (worker.Processor, error) {
		return New(defaults, logger)
	}
}

// New creates a raw-topic processor. It fails if the default style is
// not a known highlighting style.
func New(defaults Defaults, logger *slog.Logger) (*Processor, error) {
	defaults = defaults.normalized()
	if err := validateStyle(defaults.Style); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		defaults: defaults,
		logger:   logger,
		panels:   make(map[string]*panelState),
	}, nil
}

func validateStyle(style string) error {
	if !slices.Contains(styles.Names(), style) {
		return fmt.Errorf("unknown highlighting style %q", style)
	}
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
		if err := message.Validate(); err != nil {
			return failure(command.PanelID, err)
		}
		state := p.state(command.PanelID)
		formatted := Format(message, state.config)
		state.remember(message)
		return reply(panel.ResponseFormatted, command.PanelID, formatted)
	case panel.CommandGetHistory:
		state := p.state(command.PanelID)
		history := panel.History{Entries: make([]panel.FormattedMessage, 0, len(state.history))}
		for _, message := range state.history {
			history.Entries = append(history.Entries, Format(message, state.config))
		}
		return reply(panel.ResponseHistory, command.PanelID, history)
	case panel.CommandRemovePanel:
		delete(p.panels, command.PanelID)
		return nil
	default:
		return failure(command.PanelID, fmt.Errorf("raw-topic worker does not handle %s", command.Type))
	}
}

func (p *Processor) configure(command panel.Command) []panel.Response {
	var config panel.RawTopicConfig
	if err := command.Decode(&config); err != nil {
		return failure(command.PanelID, err)
	}
	if config.MaxLength < 0 || config.HistorySize < 0 {
		return failure(command.PanelID, fmt.Errorf("max_length and history_size must not be negative"))
	}
	if config.Style != "" {
		if err := validateStyle(config.Style); err != nil {
			return failure(command.PanelID, err)
		}
	}
	config = p.fill(config)

	state := p.state(command.PanelID)
	state.config = config
	state.trim()
	p.logger.Debug("raw-topic panel configured",
		"panel_id", command.PanelID,
		"max_length", config.MaxLength,
		"history_size", config.HistorySize,
	)
	return reply(panel.ResponseConfigured, command.PanelID, config)
}

func (p *Processor) fill(config panel.RawTopicConfig) panel.RawTopicConfig {
	if config.MaxLength == 0 {
		config.MaxLength = p.defaults.MaxLength
	}
	if config.HistorySize == 0 {
		config.HistorySize = p.defaults.HistorySize
	}
	if config.Style == "" {
		config.Style = p.defaults.Style
	}
	return config
}

func (p *Processor) state(panelID string) *panelState {
	state, ok := p.panels[panelID]
	if !ok {
		state = &panelState{config: p.fill(panel.RawTopicConfig{Highlight: p.defaults.Highlight})}
		p.panels[panelID] = state
	}
	return state
}

func (state *panelState) remember(message panel.Message) {
	state.history = append(state.history, message)
	state.trim()
}

func (state *panelState) trim() {
	if excess := len(state.history) - state.config.HistorySize; excess > 0 {
		clear(state.history[:excess])
		state.history = state.history[excess:]
	}
}

// Format renders message for display under config. Zero config fields
// use the package defaults.
func Format(message panel.Message, config panel.RawTopicConfig) panel.FormattedMessage {
	text, language := render(message)
	length := utf8.RuneCountInString(text)

	maxLength := config.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	truncated := false
	if length > maxLength {
		text = Truncate(text, maxLength)
		truncated = true
	}

	if config.Highlight && language != "" {
		style := config.Style
		if style == "" {
			style = DefaultStyle
		}
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, text, language, "terminal256", style); err == nil {
			text = buffer.String()
		}
	}

	return panel.FormattedMessage{
		Topic:      message.Topic,
		ReceivedAt: message.ReceivedAt,
		Text:       text,
		Truncated:  truncated,
		Length:     length,
	}
}

// Truncate cuts text to maxLength runes and appends a marker naming
// the number of runes dropped.
func Truncate(text string, maxLength int) string {
	length := utf8.RuneCountInString(text)
	if length <= maxLength {
		return text
	}
	cut := 0
	for index := range text {
		if cut == maxLength {
			return fmt.Sprintf("%s\n… [truncated %d characters]", text[:index], length-maxLength)
		}
		cut++
	}
	return text
}

// render returns the display text for message and the chroma lexer that
// suits it ("" for plain text).
func render(message panel.Message) (string, string) {
	switch message.Kind {
	case panel.KindStructured:
		return prettyJSON(message.Payload), "json"
	case panel.KindImage:
		summary := map[string]any{"kind": "image"}
		if image := message.Image; image != nil {
			summary["width"] = image.Width
			summary["height"] = image.Height
			summary["encoding"] = image.Encoding
			summary["step"] = image.Step
			summary["is_bigendian"] = image.IsBigEndian
			summary["data_bytes"] = len(image.Data)
			if image.Compression != "" {
				summary["compression"] = image.Compression
			}
		}
		encoded, err := json.Marshal(summary)
		if err != nil {
			return fmt.Sprintf("image: %v", err), ""
		}
		return prettyJSON(encoded), "json"
	default:
		data := message.Data
		switch {
		case len(data) > 0 && json.Valid(data):
			return prettyJSON(data), "json"
		case printable(data):
			return string(data), ""
		default:
			return strings.TrimRight(hex.Dump(data), "\n"), ""
		}
	}
}

func prettyJSON(data []byte) string {
	return strings.TrimRight(string(pretty.PrettyOptions(data, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   "  ",
		SortKeys: true,
	})), "\n")
}

// printable reports whether data is UTF-8 text without control
// characters other than whitespace.
func printable(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, r := range string(data) {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func reply(responseType panel.ResponseType, panelID string, payload any) []panel.Response {
	response, err := panel.NewResponse(responseType, panelID, payload)
	if err != nil {
		return failure(panelID, err)
	}
	return []panel.Response{response}
}

func failure(panelID string, err error) []panel.Response {
	return []panel.Response{panel.ErrorResponse(panelID, err.Error())}
}
