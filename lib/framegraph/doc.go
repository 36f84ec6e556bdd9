// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package framegraph builds coordinate-frame trees from transform
// records and answers path queries over them.
//
// [BuildTreeStructure] is a pure function over a collection of
// [tf.TransformRecord]s. A child has exactly one active parent (the last
// record for that child wins). A frame is a root when it never appears
// as a child. Malformed input is absorbed rather than rejected: cycles
// set [TreeStructure.HasCycles], and any part of the graph that cannot
// be reached from a natural root (a pure cycle, or a cycle hanging off
// nothing) gets a synthetic root so that every frame has a level and
// Roots is non-empty whenever Nodes is.
//
// Synthetic root selection counts, for each candidate frame, how many
// children name it as their parent. The highest count wins; equal
// counts go to the lexicographically smallest frame id. The promoted
// frame is detached from its former parent so traversal from it
// terminates.
//
// Every walk in this package is iterative with an explicit visited set.
// Transform graphs come from live robots and may be arbitrarily deep or
// cyclic.
//
// [Store] keeps the live transform set for the dashboard: one record per
// child, plus the "parent->child" last-update map used for edge
// freshness. [Classify] maps an age onto the four freshness bands.
package framegraph
