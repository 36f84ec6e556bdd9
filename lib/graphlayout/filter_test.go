// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"slices"
	"testing"
)

func nodeIDs(graph Graph) []string {
	ids := make([]string, len(graph.Nodes))
	for i, node := range graph.Nodes {
		ids[i] = node.ID
	}
	return ids
}

func TestFilterBySearchEmptyQuery(t *testing.T) {
	t.Parallel()
	graph := branching()
	filtered := FilterBySearch(graph, "   ", SearchOptions{})
	if len(filtered.Nodes) != len(graph.Nodes) || len(filtered.Edges) != len(graph.Edges) {
		t.Errorf("empty query changed the graph: %v", nodeIDs(filtered))
	}
}

func TestFilterBySearchKeepsAncestors(t *testing.T) {
	t.Parallel()
	filtered := FilterBySearch(branching(), "LASER", SearchOptions{})
	want := []string{"map", "odom", "base_link", "laser"}
	if got := nodeIDs(filtered); !slices.Equal(got, want) {
		t.Errorf("nodes: got %v, want %v", got, want)
	}
	if len(filtered.Edges) != 3 {
		t.Errorf("edges: got %d, want 3", len(filtered.Edges))
	}
}

func TestFilterBySearchKeepsEveryLineage(t *testing.T) {
	t.Parallel()
	// optical has two parents: camera and map. Both lineages survive.
	filtered := FilterBySearch(branching(), "optical", SearchOptions{})
	want := []string{"map", "odom", "base_link", "camera", "optical"}
	if got := nodeIDs(filtered); !slices.Equal(got, want) {
		t.Errorf("nodes: got %v, want %v", got, want)
	}
	for _, edge := range filtered.Edges {
		if edge.Source == "base_link" && edge.Target != "camera" {
			t.Errorf("edge %s should have been filtered", edge.ID)
		}
	}
}

func TestFilterBySearchFuzzy(t *testing.T) {
	t.Parallel()
	graph := branching()
	if got := FilterBySearch(graph, "bslk", SearchOptions{}); len(got.Nodes) != 0 {
		t.Errorf("substring mode matched %v", nodeIDs(got))
	}
	got := FilterBySearch(graph, "bslk", SearchOptions{Fuzzy: true})
	if !slices.Contains(nodeIDs(got), "base_link") {
		t.Errorf("fuzzy mode: got %v, want base_link", nodeIDs(got))
	}
}

func TestFilterBySearchMatchesID(t *testing.T) {
	t.Parallel()
	graph := Graph{Nodes: []Node{{ID: "node:/planner", Label: "planner", Kind: KindNode}}}
	if got := FilterBySearch(graph, "node:", SearchOptions{}); len(got.Nodes) != 1 {
		t.Errorf("id match: got %v", nodeIDs(got))
	}
}

func TestFilterBySearchCycleTerminates(t *testing.T) {
	t.Parallel()
	graph := chain("a", "b", "c")
	graph.Edges = append(graph.Edges, Edge{ID: "c->a", Source: "c", Target: "a"})
	got := FilterBySearch(graph, "b", SearchOptions{})
	if want := []string{"a", "b", "c"}; !slices.Equal(nodeIDs(got), want) {
		t.Errorf("got %v, want %v", nodeIDs(got), want)
	}
}
