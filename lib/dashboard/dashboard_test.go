// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/compgraph"
	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/schema/rosgraph"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
	"github.com/bureau-foundation/robodash/lib/testutil"
	"github.com/bureau-foundation/robodash/lib/worker"
)

var epoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const wait = 5 * time.Second

type harness struct {
	dashboard *Dashboard
	clock     *clock.FakeClock
	updates   chan PanelState
}

func newHarness(t *testing.T, options Options) *harness {
	t.Helper()
	fake := clock.Fake(epoch)
	updates := make(chan PanelState, 64)
	options.Clock = fake
	options.OnUpdate = func(state PanelState) { updates <- state }
	dashboard, err := New(options)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(dashboard.Close)
	return &harness{dashboard: dashboard, clock: fake, updates: updates}
}

func record(parent, child tf.FrameID, x float64) tf.TransformRecord {
	return tf.TransformRecord{
		Parent:      parent,
		Child:       child,
		Translation: tf.Vec3{X: x},
		Rotation:    tf.Identity(),
		ObservedAt:  epoch,
	}
}

func structured(topic, payload string) panel.Message {
	return panel.Message{Topic: topic, Kind: panel.KindStructured, ReceivedAt: epoch, Payload: json.RawMessage(payload)}
}

func TestIngestTransformsAndPath(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	applied, err := h.dashboard.IngestTransforms(ctx,
		record("map", "odom", 1),
		record("odom", "base_link", 2),
		record("base_link", "camera", 0.1),
		record("base_link", "base_link", 0),
	)
	if applied != 3 {
		t.Errorf("applied: got %d, want 3", applied)
	}
	if !errors.Is(err, tf.ErrSelfTransform) {
		t.Errorf("error: got %v, want ErrSelfTransform", err)
	}

	tree := h.dashboard.FrameTree()
	if !slices.Equal(tree.Roots, []tf.FrameID{"map"}) {
		t.Errorf("roots: got %v, want [map]", tree.Roots)
	}
	got := h.dashboard.FramePath("camera", "map")
	want := []tf.FrameID{"camera", "base_link", "odom", "map"}
	if !slices.Equal(got, want) {
		t.Errorf("path: got %v, want %v", got, want)
	}
	if path := h.dashboard.FramePath("camera", "nowhere"); len(path) != 0 {
		t.Errorf("path to unknown frame: got %v, want empty", path)
	}
}

func TestDispatchTransformTopic(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	message := structured(tf.TopicTF, `{"transforms":[
		{"header":{"frame_id":"/map"},"child_frame_id":"odom","transform":{"translation":{"x":1,"y":0,"z":0},"rotation":{"x":0,"y":0,"z":0,"w":1}}}
	]}`)
	count, err := h.dashboard.Dispatch(context.Background(), message)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if count != 0 {
		t.Errorf("panels: got %d, want 0", count)
	}
	if path := h.dashboard.FramePath("odom", "map"); !slices.Equal(path, []tf.FrameID{"odom", "map"}) {
		t.Errorf("path: got %v, want [odom map]", path)
	}
}

func TestFrameLayoutDecoratesFreshness(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	if _, err := h.dashboard.IngestTransforms(ctx, record("map", "odom", 3)); err != nil {
		t.Fatalf("IngestTransforms: %v", err)
	}

	freshness := func() any {
		t.Helper()
		laidOut, err := h.dashboard.FrameLayout(ctx, FrameLayoutRequest{})
		if err != nil {
			t.Fatalf("FrameLayout: %v", err)
		}
		if len(laidOut.Nodes) != 2 || len(laidOut.Edges) != 1 {
			t.Fatalf("layout: got %d nodes %d edges, want 2 and 1", len(laidOut.Nodes), len(laidOut.Edges))
		}
		if label := laidOut.Edges[0].Attributes[graphlayout.AttributeLabel]; label != "3.00m" {
			t.Errorf("label: got %v, want 3.00m", label)
		}
		return laidOut.Edges[0].Attributes[graphlayout.AttributeFreshness]
	}

	if got := freshness(); got != "Fresh" {
		t.Errorf("freshness at 0s: got %v, want Fresh", got)
	}
	h.clock.Advance(8 * time.Second)
	if got := freshness(); got != "Stale" {
		t.Errorf("freshness at 8s: got %v, want Stale", got)
	}
}

func TestFrameLayoutRejectsInvalidOptions(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	_, err := h.dashboard.FrameLayout(context.Background(), FrameLayoutRequest{
		Options: graphlayout.Options{Direction: "diagonal"},
	})
	if err == nil {
		t.Fatal("FrameLayout accepted an invalid direction")
	}
}

func TestComputationLayout(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	snapshot := rosgraph.Snapshot{
		Nodes: []rosgraph.NodeInfo{
			{Name: "/talker", Publications: []string{"/chatter", "/rosout"}},
			{Name: "/listener", Subscriptions: []string{"/chatter"}},
			{Name: "/rosout", Subscriptions: []string{"/rosout"}},
		},
		Topics: []rosgraph.TopicInfo{{Name: "/chatter", Type: "std_msgs/String"}, {Name: "/rosout"}},
	}

	laidOut, err := h.dashboard.ComputationLayout(context.Background(), snapshot, ComputationLayoutRequest{
		Graph: compgraph.Options{FilterSystemNodes: true, ShowTopics: true},
	})
	if err != nil {
		t.Fatalf("ComputationLayout: %v", err)
	}
	for _, id := range []string{compgraph.NodeID("/talker"), compgraph.NodeID("/listener"), compgraph.TopicID("/chatter")} {
		if _, ok := laidOut.Node(id); !ok {
			t.Errorf("layout missing %s", id)
		}
	}
	if len(laidOut.Nodes) != 3 {
		t.Errorf("nodes: got %d, want 3", len(laidOut.Nodes))
	}

	searched, err := h.dashboard.ComputationLayout(context.Background(), snapshot, ComputationLayoutRequest{
		Graph:  compgraph.Options{FilterSystemNodes: true, ShowTopics: true},
		Search: SearchRequest{Query: "listener"},
	})
	if err != nil {
		t.Fatalf("ComputationLayout with search: %v", err)
	}
	if len(searched.Nodes) != 3 {
		t.Errorf("search keeps ancestors: got %d nodes, want 3", len(searched.Nodes))
	}
}

func TestPlotPanelReceivesData(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	err := h.dashboard.AddPanel(ctx, PanelSpec{
		ID:     "speed",
		Type:   panel.TypePlot,
		Topics: []string{"/odom"},
		Config: panel.PlotConfig{Series: []panel.SeriesConfig{{ID: "x", Topic: "/odom", Path: "pose.position.x"}}},
	})
	if err != nil {
		t.Fatalf("AddPanel: %v", err)
	}
	state := testutil.RequireReceive(t, h.updates, wait, "waiting for CONFIGURED")
	if _, ok := state.Config.(panel.PlotConfig); !ok {
		t.Fatalf("config: got %T, want panel.PlotConfig", state.Config)
	}

	count, err := h.dashboard.Dispatch(ctx, structured("/odom", `{"pose":{"position":{"x":4.5}}}`))
	if err != nil || count != 1 {
		t.Fatalf("Dispatch: got %d, %v; want 1, nil", count, err)
	}
	if _, err := h.dashboard.Dispatch(ctx, structured("/other", `{"x":1}`)); err != nil {
		t.Fatalf("Dispatch on unsubscribed topic: %v", err)
	}

	state = testutil.RequireReceive(t, h.updates, wait, "waiting for PLOT_DATA")
	if state.PlotData == nil {
		t.Fatalf("plot data missing: %+v", state)
	}
	if got := state.PlotData.Values["x"]; got != 4.5 {
		t.Errorf("x: got %v, want 4.5", got)
	}
	rendered, ok := h.dashboard.RenderState("speed")
	if !ok || rendered.Responses != 2 {
		t.Errorf("render state: got %+v, %v", rendered, ok)
	}
	testutil.RequireNoReceive(t, h.updates, 50*time.Millisecond, "message on unsubscribed topic was delivered")
}

func TestUnrecognizedGoesToRawTopicOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	for _, spec := range []PanelSpec{
		{ID: "plot", Type: panel.TypePlot},
		{ID: "raw", Type: panel.TypeRawTopic},
	} {
		if err := h.dashboard.AddPanel(ctx, spec); err != nil {
			t.Fatalf("AddPanel(%s): %v", spec.ID, err)
		}
	}

	message := panel.Message{Topic: "/blob", Kind: panel.KindUnrecognized, ReceivedAt: epoch, Data: []byte("hello")}
	count, err := h.dashboard.Dispatch(ctx, message)
	if err != nil || count != 1 {
		t.Fatalf("Dispatch: got %d, %v; want 1, nil", count, err)
	}
	state := testutil.RequireReceive(t, h.updates, wait, "waiting for FORMATTED")
	if state.ID != "raw" || state.Formatted == nil || state.Formatted.Text != "hello" {
		t.Errorf("state: got %+v", state)
	}
}

func TestPanelErrorsAreRecorded(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	if err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "cam", Type: panel.TypeImage}); err != nil {
		t.Fatalf("AddPanel: %v", err)
	}
	message := panel.Message{
		Topic:      "/camera",
		Kind:       panel.KindImage,
		ReceivedAt: epoch,
		Image:      &panel.RawImage{Width: 1, Height: 1, Encoding: "jpeg", Data: []byte{0xff}},
	}
	if _, err := h.dashboard.Dispatch(ctx, message); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	state := testutil.RequireReceive(t, h.updates, wait, "waiting for ERROR")
	if state.LastError == "" || state.Errors != 1 || state.Image != nil {
		t.Errorf("state: got %+v, want one recorded error", state)
	}
}

func TestLateResponseAfterRemoveIsIgnored(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	factory := func() (worker.Processor, error) {
		return worker.ProcessorFunc(func(command panel.Command) []panel.Response {
			entered <- struct{}{}
			<-release
			response, _ := panel.NewResponse(panel.ResponseFormatted, command.PanelID, panel.FormattedMessage{Text: "late"})
			return []panel.Response{response}
		}), nil
	}
	h := newHarness(t, Options{Factories: map[panel.Type]worker.Factory{panel.TypeRawTopic: factory}})
	ctx := context.Background()
	if err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "raw", Type: panel.TypeRawTopic}); err != nil {
		t.Fatalf("AddPanel: %v", err)
	}
	if _, err := h.dashboard.Dispatch(ctx, structured("/chatter", `{"data":"hi"}`)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	testutil.RequireReceive(t, entered, wait, "processor never started")

	if err := h.dashboard.RemovePanel(ctx, "raw"); err != nil {
		t.Fatalf("RemovePanel: %v", err)
	}
	close(release)

	testutil.RequireNoReceive(t, h.updates, 100*time.Millisecond, "late response was merged")
	if _, ok := h.dashboard.RenderState("raw"); ok {
		t.Error("removed panel still has render state")
	}
}

func TestPanelLifecycleErrors(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	if err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "p", Type: "gauge"}); err == nil {
		t.Error("AddPanel accepted an unknown panel type")
	}
	if err := h.dashboard.AddPanel(ctx, PanelSpec{Type: panel.TypePlot}); err == nil {
		t.Error("AddPanel accepted an empty id")
	}
	if err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "p", Type: panel.TypePlot}); err != nil {
		t.Fatalf("AddPanel: %v", err)
	}
	if err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "p", Type: panel.TypeImage}); !errors.Is(err, ErrPanelExists) {
		t.Errorf("duplicate AddPanel: got %v, want ErrPanelExists", err)
	}
	if err := h.dashboard.RemovePanel(ctx, "missing"); !errors.Is(err, ErrPanelNotFound) {
		t.Errorf("RemovePanel: got %v, want ErrPanelNotFound", err)
	}
	if err := h.dashboard.ConfigurePanel(ctx, "missing", panel.PlotConfig{}); !errors.Is(err, ErrPanelNotFound) {
		t.Errorf("ConfigurePanel: got %v, want ErrPanelNotFound", err)
	}

	panels := h.dashboard.Panels()
	if len(panels) != 1 || panels[0].ID != "p" {
		t.Errorf("panels: got %+v, want [p]", panels)
	}
}

func TestWorkerStartFailure(t *testing.T) {
	t.Parallel()
	failing := func() (worker.Processor, error) { return nil, errors.New("no gpu") }
	h := newHarness(t, Options{Factories: map[panel.Type]worker.Factory{panel.TypeImage: failing}})
	ctx := context.Background()

	if err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "cam", Type: panel.TypeImage}); err == nil {
		t.Fatal("AddPanel succeeded with a failing factory")
	}
	err := h.dashboard.AddPanel(ctx, PanelSpec{ID: "cam", Type: panel.TypeImage})
	if !errors.Is(err, worker.ErrWorkerUnavailable) {
		t.Errorf("second AddPanel: got %v, want ErrWorkerUnavailable", err)
	}
	if len(h.dashboard.Panels()) != 0 {
		t.Error("failed panel left in render state")
	}
}
