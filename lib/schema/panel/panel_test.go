// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"testing"
	"time"

	"github.com/bureau-foundation/robodash/lib/codec"
)

var received = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func TestParseType(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"plot", "image", "raw_topic"} {
		if _, err := ParseType(name); err != nil {
			t.Errorf("ParseType(%q): %v", name, err)
		}
	}
	if _, err := ParseType("map3d"); err == nil {
		t.Error("ParseType(map3d): expected error")
	}
}

func TestCommandEnvelopeCarriesPayload(t *testing.T) {
	t.Parallel()
	command, err := NewCommand(CommandConfigure, "plot-1", PlotConfig{
		Series:    []SeriesConfig{{ID: "x", Path: "pose.position.x"}},
		MaxPoints: 10,
	})
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}

	data, err := codec.Marshal(command)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Command
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Type != CommandConfigure || decoded.PanelID != "plot-1" {
		t.Errorf("envelope: got %s/%s", decoded.Type, decoded.PanelID)
	}

	var config PlotConfig
	if err := decoded.Decode(&config); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if config.MaxPoints != 10 || len(config.Series) != 1 || config.Series[0].Path != "pose.position.x" {
		t.Errorf("config: got %+v", config)
	}
}

func TestCommandWithoutPayloadDecodesToZero(t *testing.T) {
	t.Parallel()
	command, err := NewCommand(CommandRemovePanel, "plot-1", nil)
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	config := PlotConfig{MaxPoints: 3}
	if err := command.Decode(&config); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if config.MaxPoints != 3 {
		t.Errorf("Decode without payload modified target: %+v", config)
	}
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()
	response := ErrorResponse("image-2", "bad step")
	if response.Type != ResponseError || response.PanelID != "image-2" || response.Error != "bad step" {
		t.Errorf("ErrorResponse: got %+v", response)
	}
	var payload DecodedImageData
	if err := response.Decode(&payload); err == nil {
		t.Error("Decode of payload-less response: expected error")
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	structured := Classify("/odom", received, []byte(`{"pose":{"position":{"x":1}}}`))
	if structured.Kind != KindStructured || len(structured.Payload) == 0 {
		t.Errorf("structured: got kind %s", structured.Kind)
	}

	image := Classify("/camera", received, []byte(`{"width":2,"height":1,"encoding":"mono8","step":2,"is_bigendian":0,"data":"AQI="}`))
	if image.Kind != KindImage || image.Image == nil {
		t.Fatalf("image: got kind %s", image.Kind)
	}
	if image.Image.Width != 2 || len(image.Image.Data) != 2 || image.Image.Data[1] != 2 {
		t.Errorf("image fields: got %+v", image.Image)
	}

	unknown := Classify("/blob", received, []byte{0xff, 0x00, 0x13})
	if unknown.Kind != KindUnrecognized || len(unknown.Data) != 3 {
		t.Errorf("unrecognized: got kind %s data %x", unknown.Kind, unknown.Data)
	}
	if err := unknown.Validate(); err != nil {
		t.Errorf("unrecognized Validate: %v", err)
	}
}

func TestMessageValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		message Message
		wantErr bool
	}{
		{"no topic", Message{Kind: KindUnrecognized}, true},
		{"structured without payload", Message{Topic: "/a", Kind: KindStructured}, true},
		{"image without image", Message{Topic: "/a", Kind: KindImage}, true},
		{"unknown kind", Message{Topic: "/a", Kind: "video"}, true},
		{"structured", Message{Topic: "/a", Kind: KindStructured, Payload: []byte(`{}`)}, false},
	}
	for _, tc := range cases {
		if err := tc.message.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestMessageSurvivesCBOR(t *testing.T) {
	t.Parallel()
	original := Classify("/odom", received, []byte(`{"x":1.5}`))
	data, err := codec.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Message
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Kind != KindStructured || string(decoded.Payload) != `{"x":1.5}` || !decoded.ReceivedAt.Equal(received) {
		t.Errorf("decoded: got %+v", decoded)
	}
}
