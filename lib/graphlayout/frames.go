// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"github.com/bureau-foundation/robodash/lib/framegraph"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// Attribute keys set on frame graphs.
const (
	AttributeDistance  = "distance"
	AttributeStatic    = "static"
	AttributeFreshness = "freshness"
	AttributeColor     = "color"
	AttributeAnimated  = "animated"
	AttributeLabel     = "label"
	AttributeAgeMillis = "age_ms"
)

// FromTree converts a frame tree into a graph: one node per frame in
// frame order, one parent→child edge per frame with a parent. Edge ids
// are [tf.EdgeKey] values so they line up with the freshness map.
func FromTree(tree framegraph.TreeStructure) Graph {
	graph := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, frame := range tree.Frames() {
		node := tree.Nodes[frame]
		data := map[string]any{
			"level":   node.Level,
			"is_root": node.IsRoot,
		}
		if node.Synthetic {
			data["synthetic"] = true
		}
		graph.Nodes = append(graph.Nodes, Node{
			ID:    string(frame),
			Label: string(frame),
			Kind:  KindFrame,
			Data:  data,
		})
	}
	for _, frame := range tree.Frames() {
		node := tree.Nodes[frame]
		if node.Parent == "" {
			continue
		}
		attributes := map[string]any{}
		if node.Transform != nil {
			attributes[AttributeDistance] = node.Transform.Translation.Norm()
			attributes[AttributeStatic] = node.Transform.IsStatic
		}
		graph.Edges = append(graph.Edges, Edge{
			ID:         tf.EdgeKey(node.Parent, frame),
			Source:     string(node.Parent),
			Target:     string(frame),
			Attributes: attributes,
		})
	}
	return graph
}
