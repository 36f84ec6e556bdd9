// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageKind discriminates the telemetry variants panels receive.
type MessageKind string

const (
	// KindStructured carries a decoded message as a JSON document.
	KindStructured MessageKind = "structured"
	// KindImage carries a raw pixel buffer.
	KindImage MessageKind = "image"
	// KindUnrecognized carries bytes whose shape the core does not
	// know. Only raw-topic panels receive it.
	KindUnrecognized MessageKind = "unrecognized"
)

// Message is one telemetry message tagged with its topic.
type Message struct {
	Topic      string      `json:"topic"`
	Kind       MessageKind `json:"kind"`
	ReceivedAt time.Time   `json:"received_at"`

	// Payload is the JSON document for KindStructured.
	Payload json.RawMessage `json:"payload,omitempty"`
	// Image is the pixel buffer for KindImage.
	Image *RawImage `json:"image,omitempty"`
	// Data is the opaque body for KindUnrecognized.
	Data []byte `json:"data,omitempty"`
}

// RawImage is an uncompressed, row-major pixel buffer. Compression names
// an optional transport compression wrapped around Data ("", "lz4",
// "zstd"); it is not an image format.
type RawImage struct {
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	Encoding    string `json:"encoding"`
	Step        uint32 `json:"step"`
	IsBigEndian bool   `json:"is_bigendian,omitempty"`
	Data        []byte `json:"data"`
	Compression string `json:"compression,omitempty"`
}

// Validate checks that the variant named by Kind is populated.
func (message Message) Validate() error {
	if message.Topic == "" {
		return errors.New("message has no topic")
	}
	switch message.Kind {
	case KindStructured:
		if len(message.Payload) == 0 {
			return fmt.Errorf("structured message on %s has no payload", message.Topic)
		}
	case KindImage:
		if message.Image == nil {
			return fmt.Errorf("image message on %s has no image", message.Topic)
		}
	case KindUnrecognized:
	default:
		return fmt.Errorf("message on %s has unknown kind %q", message.Topic, message.Kind)
	}
	return nil
}

// imageProbe detects the sensor_msgs/Image shape inside a JSON payload.
type imageProbe struct {
	Width       *uint32 `json:"width"`
	Height      *uint32 `json:"height"`
	Encoding    *string `json:"encoding"`
	Step        uint32  `json:"step"`
	IsBigEndian any     `json:"is_bigendian"`
	Data        []byte  `json:"data"`
	Compression string  `json:"compression"`
}

// Classify wraps a raw payload from the bridge in the matching variant:
// a JSON object shaped like a raw image becomes KindImage, any other
// valid JSON becomes KindStructured, and everything else is
// KindUnrecognized.
func Classify(topic string, receivedAt time.Time, raw []byte) Message {
	message := Message{Topic: topic, ReceivedAt: receivedAt}
	if !json.Valid(raw) {
		message.Kind = KindUnrecognized
		message.Data = append([]byte(nil), raw...)
		return message
	}

	var probe imageProbe
	if err := json.Unmarshal(raw, &probe); err == nil &&
		probe.Width != nil && probe.Height != nil && probe.Encoding != nil && probe.Data != nil {
		message.Kind = KindImage
		message.Image = &RawImage{
			Width:       *probe.Width,
			Height:      *probe.Height,
			Encoding:    *probe.Encoding,
			Step:        probe.Step,
			IsBigEndian: truthy(probe.IsBigEndian),
			Data:        probe.Data,
			Compression: probe.Compression,
		}
		return message
	}

	message.Kind = KindStructured
	message.Payload = append(json.RawMessage(nil), raw...)
	return message
}

// truthy accepts both the boolean and the 0/1 integer forms of
// is_bigendian that different bridges emit.
func truthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	default:
		return false
	}
}
