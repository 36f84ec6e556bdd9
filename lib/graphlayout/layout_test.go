// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"reflect"
	"testing"
)

func chain(ids ...string) Graph {
	var graph Graph
	for i, id := range ids {
		graph.Nodes = append(graph.Nodes, Node{ID: id, Label: id, Kind: KindFrame})
		if i > 0 {
			graph.Edges = append(graph.Edges, Edge{ID: ids[i-1] + "->" + id, Source: ids[i-1], Target: id})
		}
	}
	return graph
}

func branching() Graph {
	graph := chain("map", "odom", "base_link")
	for _, child := range []string{"laser", "camera", "imu"} {
		graph.Nodes = append(graph.Nodes, Node{ID: child, Label: child, Kind: KindFrame})
		graph.Edges = append(graph.Edges, Edge{ID: "base_link->" + child, Source: "base_link", Target: child})
	}
	graph.Nodes = append(graph.Nodes, Node{ID: "optical", Label: "optical", Kind: KindFrame})
	graph.Edges = append(graph.Edges,
		Edge{ID: "camera->optical", Source: "camera", Target: "optical"},
		Edge{ID: "map->optical", Source: "map", Target: "optical"},
	)
	return graph
}

func positions(layout LaidOutGraph) map[string]Position {
	result := make(map[string]Position, len(layout.Nodes))
	for _, node := range layout.Nodes {
		result[node.ID] = node.Position
	}
	return result
}

func TestLayoutDeterministic(t *testing.T) {
	t.Parallel()
	for _, direction := range []Direction{TopToBottom, BottomToTop, LeftToRight, RightToLeft} {
		options := Options{Direction: direction}
		first := positions(Layout(branching(), options))
		second := positions(Layout(branching(), options))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: layouts differ:\n%v\n%v", direction, first, second)
		}
	}
}

func TestLayoutTopToBottomRanks(t *testing.T) {
	t.Parallel()
	options := DefaultOptions()
	layout := Layout(chain("map", "odom", "base_link"), options)
	got := positions(layout)

	step := options.NodeHeight + options.RankSep
	for i, id := range []string{"map", "odom", "base_link"} {
		wantY := options.MarginY + float64(i)*step
		if got[id].Y != wantY {
			t.Errorf("%s: got y %v, want %v", id, got[id].Y, wantY)
		}
		if got[id].X != options.MarginX {
			t.Errorf("%s: got x %v, want %v (single column)", id, got[id].X, options.MarginX)
		}
	}
	wantHeight := 3*options.NodeHeight + 2*options.RankSep + 2*options.MarginY
	if layout.Height != wantHeight {
		t.Errorf("Height: got %v, want %v", layout.Height, wantHeight)
	}
}

func TestLayoutDirections(t *testing.T) {
	t.Parallel()
	graph := chain("a", "b")
	topDown := positions(Layout(graph, Options{Direction: TopToBottom}))
	bottomUp := positions(Layout(graph, Options{Direction: BottomToTop}))
	leftRight := positions(Layout(graph, Options{Direction: LeftToRight}))
	rightLeft := positions(Layout(graph, Options{Direction: RightToLeft}))

	if !(topDown["a"].Y < topDown["b"].Y) {
		t.Errorf("TB: a %v should be above b %v", topDown["a"], topDown["b"])
	}
	if !(bottomUp["a"].Y > bottomUp["b"].Y) {
		t.Errorf("BT: a %v should be below b %v", bottomUp["a"], bottomUp["b"])
	}
	if !(leftRight["a"].X < leftRight["b"].X) || leftRight["a"].Y != leftRight["b"].Y {
		t.Errorf("LR: a %v should be left of b %v on one row", leftRight["a"], leftRight["b"])
	}
	if !(rightLeft["a"].X > rightLeft["b"].X) {
		t.Errorf("RL: a %v should be right of b %v", rightLeft["a"], rightLeft["b"])
	}
}

func TestLayoutSiblingsDoNotOverlap(t *testing.T) {
	t.Parallel()
	options := DefaultOptions()
	layout := Layout(branching(), options)
	for i, a := range layout.Nodes {
		for _, b := range layout.Nodes[i+1:] {
			separateX := a.Position.X+a.Width <= b.Position.X || b.Position.X+b.Width <= a.Position.X
			separateY := a.Position.Y+a.Height <= b.Position.Y || b.Position.Y+b.Height <= a.Position.Y
			if !separateX && !separateY {
				t.Errorf("%s at %v overlaps %s at %v", a.ID, a.Position, b.ID, b.Position)
			}
		}
		if a.Position.X < options.MarginX || a.Position.Y < options.MarginY {
			t.Errorf("%s at %v lies inside the margin", a.ID, a.Position)
		}
	}
}

func TestLayoutLongEdgeKeepsRanks(t *testing.T) {
	t.Parallel()
	got := positions(Layout(branching(), DefaultOptions()))
	// optical hangs off camera (rank 3), so it sits on rank 4 even though
	// map also points at it directly.
	if !(got["optical"].Y > got["camera"].Y) {
		t.Errorf("optical %v should be below camera %v", got["optical"], got["camera"])
	}
}

func TestLayoutDropsDanglingEdges(t *testing.T) {
	t.Parallel()
	graph := chain("a", "b")
	graph.Edges = append(graph.Edges, Edge{ID: "b->ghost", Source: "b", Target: "ghost"})
	layout := Layout(graph, Options{})
	if len(layout.Edges) != 1 || layout.Edges[0].ID != "a->b" {
		t.Errorf("Edges: got %+v, want only a->b", layout.Edges)
	}
	for _, edge := range layout.Edges {
		if _, ok := layout.Node(edge.Source); !ok {
			t.Errorf("edge %s source missing", edge.ID)
		}
		if _, ok := layout.Node(edge.Target); !ok {
			t.Errorf("edge %s target missing", edge.ID)
		}
	}
}

func TestLayoutCycleTerminates(t *testing.T) {
	t.Parallel()
	graph := chain("a", "b", "c")
	graph.Edges = append(graph.Edges, Edge{ID: "c->a", Source: "c", Target: "a"}, Edge{ID: "a->a", Source: "a", Target: "a"})
	layout := Layout(graph, Options{})
	if len(layout.Nodes) != 3 {
		t.Fatalf("Nodes: got %d, want 3", len(layout.Nodes))
	}
	if len(layout.Edges) != 4 {
		t.Errorf("Edges: got %d, want all 4 returned", len(layout.Edges))
	}
	got := positions(layout)
	if !(got["a"].Y < got["b"].Y && got["b"].Y < got["c"].Y) {
		t.Errorf("cycle should be ranked in input order: %v", got)
	}
}

func TestLayoutEmpty(t *testing.T) {
	t.Parallel()
	layout := Layout(Graph{}, DefaultOptions())
	if len(layout.Nodes) != 0 || len(layout.Edges) != 0 {
		t.Errorf("got %+v", layout)
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("defaults: %v", err)
	}
	if err := (Options{Direction: "diagonal", NodeSep: -1}).Validate(); err == nil {
		t.Error("bad options: expected error")
	}
	if direction, err := ParseDirection("lr"); err != nil || direction != LeftToRight {
		t.Errorf("ParseDirection(lr): got %s, %v", direction, err)
	}
}
