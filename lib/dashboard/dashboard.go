// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard is the composition root of the telemetry core.
//
// A [Dashboard] owns the transform [framegraph.Store], a layout
// [graphlayout.Cache], and the [worker.Registry] with one execution
// context per panel type. Upstream telemetry enters on the caller's
// goroutine: transforms and graph snapshots are turned into trees and
// layouts synchronously, while panel messages are routed by topic to
// the panels subscribed to them and processed in the background. Worker
// responses are merged into per-panel render state that the caller
// reads with [Dashboard.RenderState] or observes through
// [Options.OnUpdate].
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/compgraph"
	"github.com/bureau-foundation/robodash/lib/framegraph"
	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/schema/panel"
	"github.com/bureau-foundation/robodash/lib/schema/rosgraph"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
	"github.com/bureau-foundation/robodash/lib/worker"
	"github.com/bureau-foundation/robodash/lib/worker/image"
	"github.com/bureau-foundation/robodash/lib/worker/plot"
	"github.com/bureau-foundation/robodash/lib/worker/rawtopic"
)

const tracerName = "github.com/bureau-foundation/robodash/lib/dashboard"

// DefaultLayoutCacheSize is the number of layouts kept when
// Options.LayoutCacheSize is zero.
const DefaultLayoutCacheSize = 32

var (
	// ErrPanelExists is returned by AddPanel for a duplicate panel id.
	ErrPanelExists = errors.New("panel already exists")

	// ErrPanelNotFound is returned for operations on an unknown panel.
	ErrPanelNotFound = errors.New("panel not found")
)

// Options configures a [Dashboard]. Zero values select defaults.
type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger

	// QueueCapacity bounds each worker context's inbox.
	QueueCapacity int

	// LayoutCacheSize bounds the layout cache. Negative disables it.
	LayoutCacheSize int

	// Thresholds drive edge freshness decoration.
	Thresholds framegraph.Thresholds

	// Layout is the base layout configuration; requests may override
	// it field by field.
	Layout graphlayout.Options

	PlotMaxPoints int
	ImageColorMap string
	RawTopic      rawtopic.Defaults

	// Factories replaces the built-in worker factories per panel type.
	Factories map[panel.Type]worker.Factory

	// OnUpdate, when set, is called with a copy of a panel's render
	// state after each merged response. It runs on the worker
	// goroutine and must not call Close.
	OnUpdate func(PanelState)
}

// Dashboard routes telemetry to the frame engine, the layout adapter
// and the panel workers. Safe for concurrent use.
type Dashboard struct {
	clock      clock.Clock
	logger     *slog.Logger
	thresholds framegraph.Thresholds
	layout     graphlayout.Options
	onUpdate   func(PanelState)
	tracer     trace.Tracer

	frames   *framegraph.Store
	cache    *graphlayout.Cache
	registry *worker.Registry

	mu     sync.Mutex
	panels map[string]*panelEntry
}

type panelEntry struct {
	spec  PanelSpec
	state PanelState
}

// New creates a dashboard. Worker contexts start lazily when the first
// panel of their type is added.
func New(options Options) (*Dashboard, error) {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.Thresholds == (framegraph.Thresholds{}) {
		options.Thresholds = framegraph.DefaultThresholds()
	}
	if err := options.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("freshness thresholds: %w", err)
	}
	if options.Layout == (graphlayout.Options{}) {
		options.Layout = graphlayout.DefaultOptions()
	}
	if err := options.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout options: %w", err)
	}
	cacheSize := options.LayoutCacheSize
	if cacheSize == 0 {
		cacheSize = DefaultLayoutCacheSize
	}

	factories := map[panel.Type]worker.Factory{
		panel.TypePlot:     plot.NewFactory(options.PlotMaxPoints, options.Logger.With("panel_type", panel.TypePlot)),
		panel.TypeImage:    image.NewFactory(options.ImageColorMap, options.Logger.With("panel_type", panel.TypeImage)),
		panel.TypeRawTopic: rawtopic.NewFactory(options.RawTopic, options.Logger.With("panel_type", panel.TypeRawTopic)),
	}
	for panelType, factory := range options.Factories {
		factories[panelType] = factory
	}

	return &Dashboard{
		clock:      options.Clock,
		logger:     options.Logger,
		thresholds: options.Thresholds,
		layout:     options.Layout,
		onUpdate:   options.OnUpdate,
		tracer:     otel.Tracer(tracerName),
		frames:     framegraph.NewStore(options.Clock),
		cache:      graphlayout.NewCache(cacheSize),
		registry: worker.NewRegistry(worker.Options{
			Factories:     factories,
			QueueCapacity: options.QueueCapacity,
			Logger:        options.Logger,
		}),
		panels: make(map[string]*panelEntry),
	}, nil
}

// Frames returns the transform store backing the frame tree.
func (d *Dashboard) Frames() *framegraph.Store { return d.frames }

// Thresholds returns the freshness thresholds in use.
func (d *Dashboard) Thresholds() framegraph.Thresholds { return d.thresholds }

// Close terminates every worker context and waits for them to exit.
// Render state stays readable.
func (d *Dashboard) Close() {
	d.registry.Close()
}

// IngestTransforms applies records to the frame store in order and
// returns how many were accepted. Invalid records are skipped and
// reported together in the error.
func (d *Dashboard) IngestTransforms(ctx context.Context, records ...tf.TransformRecord) (int, error) {
	_, span := d.tracer.Start(ctx, "dashboard.IngestTransforms",
		trace.WithAttributes(attribute.Int("records", len(records))),
	)
	defer span.End()

	var errs []error
	applied := 0
	for _, record := range records {
		if err := record.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("transform %s: %w", record.EdgeKey(), err))
			continue
		}
		if d.frames.Apply(record) {
			applied++
		}
	}
	span.SetAttributes(attribute.Int("applied", applied))
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid transforms")
		return applied, err
	}
	return applied, nil
}

// FrameTree builds the tree of every frame seen so far.
func (d *Dashboard) FrameTree() framegraph.TreeStructure {
	return d.frames.Tree()
}

// FramePath returns the frames on the path from one frame to another,
// or nil when either is unknown or they share no ancestor.
func (d *Dashboard) FramePath(from, to tf.FrameID) []tf.FrameID {
	return framegraph.FindPath(d.frames.Tree().Nodes, from, to)
}

// SearchRequest narrows a graph to the nodes matching Query and their
// ancestors before layout.
type SearchRequest struct {
	Query string `json:"query,omitempty"`
	Fuzzy bool   `json:"fuzzy,omitempty"`
}

// FrameLayoutRequest selects how the frame tree is laid out. Zero
// Options fields inherit the dashboard's layout configuration.
type FrameLayoutRequest struct {
	Search  SearchRequest       `json:"search"`
	Options graphlayout.Options `json:"options"`
}

// ComputationLayoutRequest selects how a computation graph snapshot is
// built and laid out.
type ComputationLayoutRequest struct {
	Graph   compgraph.Options   `json:"graph"`
	Search  SearchRequest       `json:"search"`
	Options graphlayout.Options `json:"options"`
}

// FrameLayout lays out the current frame tree. Edges are decorated with
// freshness computed at call time; the placement itself is cached.
func (d *Dashboard) FrameLayout(ctx context.Context, request FrameLayoutRequest) (graphlayout.LaidOutGraph, error) {
	_, span := d.tracer.Start(ctx, "dashboard.FrameLayout",
		trace.WithAttributes(attribute.String("search", request.Search.Query)),
	)
	defer span.End()

	options, err := d.layoutOptions(request.Options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid layout options")
		return graphlayout.LaidOutGraph{}, err
	}

	graph := graphlayout.FromTree(d.frames.Tree())
	graph = graphlayout.FilterBySearch(graph, request.Search.Query, graphlayout.SearchOptions{Fuzzy: request.Search.Fuzzy})
	laidOut := d.cache.Layout(graph, options)

	// The cached layout is shared; decoration works on cloned edges.
	laidOut.Edges = graphlayout.DecorateEdges(laidOut.Edges, d.frames.LastUpdate(), d.clock.Now(), d.thresholds)

	span.SetAttributes(
		attribute.Int("nodes", len(laidOut.Nodes)),
		attribute.Int("edges", len(laidOut.Edges)),
	)
	return laidOut, nil
}

// ComputationLayout builds and lays out the node/topic graph for
// snapshot.
func (d *Dashboard) ComputationLayout(ctx context.Context, snapshot rosgraph.Snapshot, request ComputationLayoutRequest) (graphlayout.LaidOutGraph, error) {
	_, span := d.tracer.Start(ctx, "dashboard.ComputationLayout",
		trace.WithAttributes(
			attribute.Int("snapshot_nodes", len(snapshot.Nodes)),
			attribute.Bool("show_topics", request.Graph.ShowTopics),
			attribute.Bool("filter_system_nodes", request.Graph.FilterSystemNodes),
			attribute.String("search", request.Search.Query),
		),
	)
	defer span.End()

	options, err := d.layoutOptions(request.Options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid layout options")
		return graphlayout.LaidOutGraph{}, err
	}

	graph := compgraph.Build(snapshot, request.Graph)
	graph = graphlayout.FilterBySearch(graph, request.Search.Query, graphlayout.SearchOptions{Fuzzy: request.Search.Fuzzy})
	laidOut := d.cache.Layout(graph, options)

	span.SetAttributes(
		attribute.Int("nodes", len(laidOut.Nodes)),
		attribute.Int("edges", len(laidOut.Edges)),
	)
	return laidOut, nil
}

func (d *Dashboard) layoutOptions(override graphlayout.Options) (graphlayout.Options, error) {
	options := d.layout
	if override.Direction != "" {
		options.Direction = override.Direction
	}
	for _, field := range []struct {
		target *float64
		value  float64
	}{
		{&options.NodeWidth, override.NodeWidth},
		{&options.NodeHeight, override.NodeHeight},
		{&options.NodeSep, override.NodeSep},
		{&options.RankSep, override.RankSep},
		{&options.MarginX, override.MarginX},
		{&options.MarginY, override.MarginY},
	} {
		if field.value != 0 {
			*field.target = field.value
		}
	}
	if err := options.Validate(); err != nil {
		return graphlayout.Options{}, fmt.Errorf("layout options: %w", err)
	}
	return options, nil
}

// Dispatch routes one telemetry message. Transform topics feed the
// frame store. The message then goes to every panel subscribed to its
// topic that can display its kind: structured messages to plot and
// raw-topic panels, images to image and raw-topic panels, and
// unrecognized messages to raw-topic panels only. It returns the number
// of panels the message was queued for.
func (d *Dashboard) Dispatch(ctx context.Context, message panel.Message) (int, error) {
	ctx, span := d.tracer.Start(ctx, "dashboard.Dispatch",
		trace.WithAttributes(
			attribute.String("topic", message.Topic),
			attribute.String("kind", string(message.Kind)),
		),
	)
	defer span.End()

	if err := message.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid message")
		return 0, err
	}

	var errs []error
	if message.Kind == panel.KindStructured && tf.IsTransformTopic(message.Topic) {
		records, err := tf.ParseTFMessage(message.Payload, message.Topic == tf.TopicTFStatic, message.ReceivedAt)
		if err != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", message.Topic, err))
		} else if _, err := d.IngestTransforms(ctx, records...); err != nil {
			errs = append(errs, err)
		}
	}

	targets := d.subscribers(message)
	if len(targets) > 0 {
		command, err := panel.NewCommand(panel.CommandProcessMessage, "", message)
		if err != nil {
			return 0, fmt.Errorf("encoding message on %s: %w", message.Topic, err)
		}
		sent := 0
		for _, target := range targets {
			command.PanelID = target.ID
			if err := d.registry.Send(target.Type, command); err != nil {
				errs = append(errs, fmt.Errorf("panel %s: %w", target.ID, err))
				continue
			}
			sent++
		}
		span.SetAttributes(attribute.Int("panels", sent))
		targets = targets[:sent]
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		return len(targets), err
	}
	return len(targets), nil
}

func accepts(panelType panel.Type, kind panel.MessageKind) bool {
	switch panelType {
	case panel.TypeRawTopic:
		return true
	case panel.TypePlot:
		return kind == panel.KindStructured
	case panel.TypeImage:
		return kind == panel.KindImage
	default:
		return false
	}
}

// subscribers returns the panels that should receive message, sorted by
// id so per-panel delivery order is deterministic.
func (d *Dashboard) subscribers(message panel.Message) []PanelSpec {
	d.mu.Lock()
	defer d.mu.Unlock()
	var targets []PanelSpec
	for _, entry := range d.panels {
		if !accepts(entry.spec.Type, message.Kind) || !entry.spec.Subscribes(message.Topic) {
			continue
		}
		targets = append(targets, entry.spec)
	}
	slices.SortFunc(targets, func(a, b PanelSpec) int { return strings.Compare(a.ID, b.ID) })
	return targets
}
