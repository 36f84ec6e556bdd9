// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type sampleEnvelope struct {
	Type    string     `cbor:"type"`
	PanelID string     `cbor:"panel_id,omitempty"`
	Payload RawMessage `cbor:"payload,omitempty"`
}

type sampleReading struct {
	Topic      string    `json:"topic"`
	ReceivedAt time.Time `json:"received_at"`
	Value      float64   `json:"value"`
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestTimestampsKeepNanoseconds(t *testing.T) {
	t.Parallel()
	original := sampleReading{
		Topic:      "/imu",
		ReceivedAt: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
		Value:      9.81,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleReading
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.ReceivedAt.Equal(original.ReceivedAt) {
		t.Errorf("ReceivedAt: got %v, want %v", decoded.ReceivedAt, original.ReceivedAt)
	}
}

func TestRawMessageDefersDecoding(t *testing.T) {
	t.Parallel()
	payload, err := MarshalRaw(sampleReading{Topic: "/odom", Value: 1.5})
	if err != nil {
		t.Fatalf("MarshalRaw: %v", err)
	}
	data, err := Marshal(sampleEnvelope{Type: "PROCESS_MESSAGE", PanelID: "plot-1", Payload: payload})
	if err != nil {
		t.Fatalf("Marshal envelope: %v", err)
	}

	var envelope sampleEnvelope
	if err := Unmarshal(data, &envelope); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	if envelope.PanelID != "plot-1" {
		t.Errorf("PanelID: got %q, want %q", envelope.PanelID, "plot-1")
	}

	var reading sampleReading
	if err := Unmarshal(envelope.Payload, &reading); err != nil {
		t.Fatalf("Unmarshal payload: %v", err)
	}
	if reading.Topic != "/odom" || reading.Value != 1.5 {
		t.Errorf("payload: got %+v", reading)
	}
}

func TestMarshalRawNil(t *testing.T) {
	t.Parallel()
	raw, err := MarshalRaw(nil)
	if err != nil {
		t.Fatalf("MarshalRaw(nil): %v", err)
	}
	if raw != nil {
		t.Errorf("MarshalRaw(nil): got %x, want nil", raw)
	}
}

func TestAnyMapsDecodeWithStringKeys(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]any{"nested": map[string]any{"x": 1}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type: got %T, want map[string]any", decoded)
	}
	if _, ok := outer["nested"].(map[string]any); !ok {
		t.Errorf("nested type: got %T, want map[string]any", outer["nested"])
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]string{"type": "CONFIGURE"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, "CONFIGURE") {
		t.Errorf("Diagnose: got %q, want it to mention CONFIGURE", notation)
	}
}
