// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package graphlayout turns a semantic directed graph into positioned
// rectangles for rendering.
//
// The pipeline is filter, then lay out, then decorate:
//
//   - [FilterBySearch] keeps the nodes whose label or id matches a
//     query, plus every ancestor of a match, so a filtered view never
//     strands a frame away from its lineage.
//   - [Layout] runs a layered (Sugiyama-style) placement: back edges
//     are reversed to break cycles, nodes are ranked by longest path,
//     long edges are split by virtual nodes, ranks are ordered by
//     barycenter sweeps, and coordinates are balanced against their
//     neighbours under a minimum separation. The result is a pure
//     function of the graph and [Options]; previous positions never
//     feed back in.
//   - [DecorateEdges] attaches cosmetic freshness metadata read from a
//     "parent->child" last-update map. It never moves anything.
//
// [FromTree] adapts a [framegraph.TreeStructure] into a [Graph]; the
// computation graph arrives already in this form from package
// compgraph. [Cache] memoises layouts by a BLAKE3 digest of the
// deterministic CBOR encoding of the graph and options.
package graphlayout
