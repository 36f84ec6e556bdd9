// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"fmt"

	"github.com/bureau-foundation/robodash/lib/codec"
)

// Type identifies a panel kind. There is one worker context per Type.
type Type string

const (
	TypePlot     Type = "plot"
	TypeImage    Type = "image"
	TypeRawTopic Type = "raw_topic"
)

// Types lists every panel type in a stable order.
var Types = []Type{TypePlot, TypeImage, TypeRawTopic}

// ParseType validates a panel type name.
func ParseType(name string) (Type, error) {
	for _, candidate := range Types {
		if string(candidate) == name {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown panel type %q (want plot, image, or raw_topic)", name)
}

// CommandType discriminates commands.
type CommandType string

const (
	// CommandConfigure creates or updates panel state from a config
	// payload.
	CommandConfigure CommandType = "CONFIGURE"
	// CommandProcessMessage ingests one Message and produces an
	// incremental result.
	CommandProcessMessage CommandType = "PROCESS_MESSAGE"
	// CommandRemovePanel drops all state for the panel.
	CommandRemovePanel CommandType = "REMOVE_PANEL"

	// CommandGetSeries asks a plot worker for every buffered sample.
	CommandGetSeries CommandType = "GET_SERIES"
	// CommandClear empties a plot worker's series buffers.
	CommandClear CommandType = "CLEAR"
	// CommandReprocess re-decodes an image panel's last frame with the
	// current settings.
	CommandReprocess CommandType = "REPROCESS"
	// CommandGetHistory asks a raw-topic worker for its scroll-back.
	CommandGetHistory CommandType = "GET_HISTORY"
)

// ResponseType discriminates responses.
type ResponseType string

const (
	ResponseConfigured ResponseType = "CONFIGURED"
	ResponsePlotData   ResponseType = "PLOT_DATA"
	ResponseSeries     ResponseType = "SERIES"
	ResponseImage      ResponseType = "IMAGE"
	ResponseFormatted  ResponseType = "FORMATTED"
	ResponseHistory    ResponseType = "HISTORY"
	ResponseError      ResponseType = "ERROR"
)

// Command is the envelope sent to a worker context.
type Command struct {
	Type    CommandType      `cbor:"type"`
	PanelID string           `cbor:"panel_id"`
	Payload codec.RawMessage `cbor:"payload,omitempty"`
}

// NewCommand builds a command, encoding payload when it is non-nil.
func NewCommand(commandType CommandType, panelID string, payload any) (Command, error) {
	raw, err := codec.MarshalRaw(payload)
	if err != nil {
		return Command{}, fmt.Errorf("encoding %s payload for panel %s: %w", commandType, panelID, err)
	}
	return Command{Type: commandType, PanelID: panelID, Payload: raw}, nil
}

// Decode unmarshals the command payload into v. A command without a
// payload leaves v untouched.
func (command Command) Decode(v any) error {
	if len(command.Payload) == 0 {
		return nil
	}
	if err := codec.Unmarshal(command.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", command.Type, err)
	}
	return nil
}

// Response is the envelope a worker context sends back.
type Response struct {
	Type    ResponseType     `cbor:"type"`
	PanelID string           `cbor:"panel_id"`
	Payload codec.RawMessage `cbor:"payload,omitempty"`
	// Error is the human-readable failure for ResponseError.
	Error string `cbor:"error,omitempty"`
}

// NewResponse builds a response, encoding payload when it is non-nil.
func NewResponse(responseType ResponseType, panelID string, payload any) (Response, error) {
	raw, err := codec.MarshalRaw(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encoding %s payload for panel %s: %w", responseType, panelID, err)
	}
	return Response{Type: responseType, PanelID: panelID, Payload: raw}, nil
}

// ErrorResponse reports a per-message processing failure for panelID.
func ErrorResponse(panelID string, message string) Response {
	return Response{Type: ResponseError, PanelID: panelID, Error: message}
}

// Decode unmarshals the response payload into v.
func (response Response) Decode(v any) error {
	if len(response.Payload) == 0 {
		return fmt.Errorf("%s response for panel %s has no payload", response.Type, response.PanelID)
	}
	if err := codec.Unmarshal(response.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", response.Type, err)
	}
	return nil
}
