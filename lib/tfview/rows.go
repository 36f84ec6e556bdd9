// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tfview

import (
	"time"

	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/framegraph"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// Snapshot is everything a view needs to draw one frame of the tree.
type Snapshot struct {
	Tree       framegraph.TreeStructure
	LastUpdate map[string]time.Time
	Now        time.Time
	Thresholds framegraph.Thresholds
}

// SnapshotFunc produces the current snapshot. It is called from the
// bubbletea command goroutine and must be safe for concurrent use.
type SnapshotFunc func() Snapshot

// FromStore returns a SnapshotFunc reading store at the clock's time.
func FromStore(store *framegraph.Store, c clock.Clock, thresholds framegraph.Thresholds) SnapshotFunc {
	return func() Snapshot {
		return Snapshot{
			Tree:       store.Tree(),
			LastUpdate: store.LastUpdate(),
			Now:        c.Now(),
			Thresholds: thresholds,
		}
	}
}

// Row is one line of a flattened frame tree.
type Row struct {
	Frame tf.FrameID
	Depth int
	// Prefix is the tree glyphs drawn before the frame name.
	Prefix string

	IsRoot    bool
	Synthetic bool

	// HasEdge is false for roots and frames only seen as parents.
	HasEdge   bool
	Static    bool
	Age       time.Duration
	Freshness framegraph.Freshness
	Distance  float64
}

// Rows flattens the tree depth-first from each root in order, children
// in frame order.
func Rows(snapshot Snapshot) []Row {
	tree := snapshot.Tree
	rows := make([]Row, 0, len(tree.Nodes))
	visited := make(map[tf.FrameID]bool, len(tree.Nodes))

	var walk func(frame tf.FrameID, depth int, indent string, last bool)
	walk = func(frame tf.FrameID, depth int, indent string, last bool) {
		node := tree.Nodes[frame]
		if node == nil || visited[frame] {
			return
		}
		visited[frame] = true

		row := Row{
			Frame:     frame,
			Depth:     depth,
			IsRoot:    node.IsRoot,
			Synthetic: node.Synthetic,
		}
		childIndent := indent
		if depth > 0 {
			if last {
				row.Prefix = indent + "└── "
				childIndent = indent + "    "
			} else {
				row.Prefix = indent + "├── "
				childIndent = indent + "│   "
			}
		}
		if record := node.Transform; record != nil && !node.IsRoot {
			row.HasEdge = true
			row.Static = record.IsStatic
			row.Distance = record.Translation.Norm()
			if observed, ok := snapshot.LastUpdate[record.EdgeKey()]; ok {
				row.Age = max(snapshot.Now.Sub(observed), 0)
			}
			row.Freshness = snapshot.Thresholds.Classify(row.Age)
		}
		rows = append(rows, row)

		for i, child := range node.Children {
			walk(child, depth+1, childIndent, i == len(node.Children)-1)
		}
	}

	for _, root := range tree.Roots {
		walk(root, 0, "", true)
	}
	return rows
}

// FilterRows keeps rows whose frame matches and every ancestor of a
// match, preserving order.
func FilterRows(rows []Row, tree framegraph.TreeStructure, match func(tf.FrameID) bool) []Row {
	keep := make(map[tf.FrameID]bool)
	for _, row := range rows {
		if !match(row.Frame) {
			continue
		}
		for _, frame := range framegraph.RootPath(tree.Nodes, row.Frame) {
			keep[frame] = true
		}
	}
	filtered := make([]Row, 0, len(keep))
	for _, row := range rows {
		if keep[row.Frame] {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
