// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

// NodeKind distinguishes the semantic graphs the adapter lays out.
type NodeKind string

const (
	KindFrame NodeKind = "frame"
	KindNode  NodeKind = "node"
	KindTopic NodeKind = "topic"
)

// Node is a vertex of a semantic graph. Data carries renderer metadata
// and is passed through untouched.
type Node struct {
	ID    string         `json:"id" cbor:"id"`
	Label string         `json:"label" cbor:"label"`
	Kind  NodeKind       `json:"kind" cbor:"kind"`
	Data  map[string]any `json:"data,omitempty" cbor:"data,omitempty"`
}

// Edge is a directed edge between two node ids.
type Edge struct {
	ID         string         `json:"id" cbor:"id"`
	Source     string         `json:"source" cbor:"source"`
	Target     string         `json:"target" cbor:"target"`
	Attributes map[string]any `json:"attributes,omitempty" cbor:"attributes,omitempty"`
}

// Graph is a semantic graph ready for filtering and layout.
type Graph struct {
	Nodes []Node `json:"nodes" cbor:"nodes"`
	Edges []Edge `json:"edges" cbor:"edges"`
}

// Position is a point in layout space. For positioned nodes it is the
// top-left corner of the node rectangle.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionedNode is a node placed by [Layout].
type PositionedNode struct {
	Node
	Position Position `json:"position"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// LaidOutGraph is the output of [Layout]. Every edge's endpoints are in
// Nodes. Width and Height bound the drawing including margins.
type LaidOutGraph struct {
	Nodes  []PositionedNode `json:"nodes"`
	Edges  []Edge           `json:"edges"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
}

// Node returns the positioned node with the given id.
func (g LaidOutGraph) Node(id string) (PositionedNode, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return PositionedNode{}, false
}

// nodeIndex maps node ids to their first position in nodes.
func nodeIndex(nodes []Node) map[string]int {
	index := make(map[string]int, len(nodes))
	for position, node := range nodes {
		if _, exists := index[node.ID]; !exists {
			index[node.ID] = position
		}
	}
	return index
}
