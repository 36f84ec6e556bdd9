// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// SearchOptions controls how [FilterBySearch] matches node text.
type SearchOptions struct {
	// Fuzzy enables fzf-style subsequence matching. The default is a
	// case-insensitive substring match.
	Fuzzy bool
}

// Matcher tests node text against one query. A Matcher reuses its
// scratch space and is not safe for concurrent use.
type Matcher struct {
	pattern []rune
	fuzzy   bool
	slab    *util.Slab
}

// NewMatcher prepares query for repeated matching. Leading and trailing
// whitespace is ignored; an empty query matches everything.
func NewMatcher(query string, options SearchOptions) *Matcher {
	return &Matcher{
		pattern: []rune(strings.ToLower(strings.TrimSpace(query))),
		fuzzy:   options.Fuzzy,
		slab:    util.MakeSlab(100*1024, 2048),
	}
}

// Empty reports whether the matcher has no pattern.
func (m *Matcher) Empty() bool {
	return len(m.pattern) == 0
}

// Match reports whether text contains the pattern, ignoring case.
func (m *Matcher) Match(text string) bool {
	if m.Empty() {
		return true
	}
	if text == "" {
		return false
	}
	chars := util.ToChars([]byte(text))
	var result algo.Result
	if m.fuzzy {
		result, _ = algo.FuzzyMatchV2(false, true, true, &chars, m.pattern, false, m.slab)
	} else {
		result, _ = algo.ExactMatchNaive(false, true, true, &chars, m.pattern, false, m.slab)
	}
	return result.Start >= 0
}

// MatchNode reports whether the node's label or id matches.
func (m *Matcher) MatchNode(node Node) bool {
	return m.Match(node.Label) || m.Match(node.ID)
}

// FilterBySearch returns the subgraph of nodes matching query together
// with every ancestor of a match. Because the survivors are closed under
// "is an ancestor of", every node on a path between two survivors also
// survives, and no match is cut off from its lineage. Edges survive when
// both endpoints do. Node and edge order follow the input. An empty
// query returns graph unchanged.
func FilterBySearch(graph Graph, query string, options SearchOptions) Graph {
	matcher := NewMatcher(query, options)
	if matcher.Empty() {
		return graph
	}

	parents := make(map[string][]string)
	for _, edge := range graph.Edges {
		parents[edge.Target] = append(parents[edge.Target], edge.Source)
	}

	keep := make(map[string]bool)
	var queue []string
	for _, node := range graph.Nodes {
		if !keep[node.ID] && matcher.MatchNode(node) {
			keep[node.ID] = true
			queue = append(queue, node.ID)
		}
	}
	searchMatches.Observe(float64(len(queue)))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range parents[current] {
			if !keep[parent] {
				keep[parent] = true
				queue = append(queue, parent)
			}
		}
	}

	filtered := Graph{Nodes: []Node{}, Edges: []Edge{}}
	present := make(map[string]bool, len(keep))
	for _, node := range graph.Nodes {
		if keep[node.ID] {
			filtered.Nodes = append(filtered.Nodes, node)
			present[node.ID] = true
		}
	}
	for _, edge := range graph.Edges {
		if present[edge.Source] && present[edge.Target] {
			filtered.Edges = append(filtered.Edges, edge)
		}
	}
	return filtered
}
