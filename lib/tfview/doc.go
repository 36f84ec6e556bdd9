// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tfview renders transform frame trees for the terminal.
//
// [Rows] flattens a [framegraph.TreeStructure] into display rows in
// depth-first order with tree glyphs, edge ages and freshness bands.
// [Renderer] styles the rows with lipgloss, colouring each edge by its
// freshness band and truncating lines to the terminal width. [Model]
// is a bubbletea model that refreshes the rows on a timer from a
// [SnapshotFunc], with vim-style navigation and an incremental filter
// that keeps matching frames and their ancestors.
package tfview
