// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"slices"

	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// FrameNode is one frame in a built tree.
type FrameNode struct {
	Frame tf.FrameID `json:"frame"`
	// Parent is empty for roots.
	Parent tf.FrameID `json:"parent,omitempty"`
	// Children is sorted by frame id.
	Children []tf.FrameID `json:"children,omitempty"`
	// Transform is the record that established the edge from Parent,
	// or nil for frames only ever seen as a parent.
	Transform *tf.TransformRecord `json:"transform,omitempty"`
	Level     int                 `json:"level"`
	IsRoot    bool                `json:"is_root"`
	// Synthetic marks a root that was promoted because nothing else
	// reached it.
	Synthetic bool `json:"synthetic,omitempty"`
}

// TreeStructure is the result of [BuildTreeStructure].
type TreeStructure struct {
	Nodes map[tf.FrameID]*FrameNode `json:"nodes"`
	// Roots lists natural roots in frame order followed by synthetic
	// roots in promotion order.
	Roots          []tf.FrameID `json:"roots"`
	SyntheticRoots []tf.FrameID `json:"synthetic_roots,omitempty"`
	HasCycles      bool         `json:"has_cycles"`
}

// Frames returns every frame id in sorted order.
func (tree TreeStructure) Frames() []tf.FrameID {
	frames := make([]tf.FrameID, 0, len(tree.Nodes))
	for frame := range tree.Nodes {
		frames = append(frames, frame)
	}
	slices.Sort(frames)
	return frames
}

// Depth returns the largest level in the tree, or -1 for an empty tree.
func (tree TreeStructure) Depth() int {
	depth := -1
	for _, node := range tree.Nodes {
		depth = max(depth, node.Level)
	}
	return depth
}

// BuildTreeStructure builds a frame tree from records. Later records
// for the same child replace earlier ones. Self-edges and records with
// an empty frame name are ignored. It never fails: an empty input
// yields an empty tree.
func BuildTreeStructure(records []tf.TransformRecord) TreeStructure {
	tree := TreeStructure{Nodes: make(map[tf.FrameID]*FrameNode)}

	node := func(frame tf.FrameID) *FrameNode {
		existing, ok := tree.Nodes[frame]
		if !ok {
			existing = &FrameNode{Frame: frame}
			tree.Nodes[frame] = existing
		}
		return existing
	}

	for index := range records {
		record := records[index]
		if record.Validate() != nil {
			continue
		}
		parent := node(record.Parent)
		child := node(record.Child)
		if child.Parent != "" && child.Parent != record.Parent {
			previous := tree.Nodes[child.Parent]
			previous.Children = removeFrame(previous.Children, child.Frame)
		}
		if child.Parent != record.Parent {
			parent.Children = append(parent.Children, child.Frame)
		}
		child.Parent = record.Parent
		child.Transform = &record
	}
	if len(tree.Nodes) == 0 {
		return tree
	}

	frames := tree.Frames()
	for _, frame := range frames {
		slices.Sort(tree.Nodes[frame].Children)
	}

	tree.HasCycles = detectCycles(tree.Nodes, frames)

	for _, frame := range frames {
		if tree.Nodes[frame].Parent == "" {
			tree.Nodes[frame].IsRoot = true
			tree.Roots = append(tree.Roots, frame)
		}
	}

	reached := make(map[tf.FrameID]bool, len(tree.Nodes))
	for _, root := range tree.Roots {
		assignLevels(tree.Nodes, root, reached)
	}
	for len(reached) < len(tree.Nodes) {
		root := promotionCandidate(tree.Nodes, frames, reached)
		promote(tree.Nodes, root)
		tree.Roots = append(tree.Roots, root)
		tree.SyntheticRoots = append(tree.SyntheticRoots, root)
		assignLevels(tree.Nodes, root, reached)
	}

	treeBuilds.Inc()
	if tree.HasCycles {
		cyclesDetected.Inc()
	}
	if len(tree.SyntheticRoots) > 0 {
		syntheticPromotions.Add(float64(len(tree.SyntheticRoots)))
	}
	return tree
}

// detectCycles walks child→parent from every unvisited frame. Each frame
// has at most one parent, so the walk is a simple chain; meeting a frame
// already on the current chain closes a cycle.
func detectCycles(nodes map[tf.FrameID]*FrameNode, frames []tf.FrameID) bool {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[tf.FrameID]int, len(nodes))
	hasCycles := false
	var path []tf.FrameID
	for _, start := range frames {
		path = path[:0]
		current := start
		for current != "" && state[current] == unvisited {
			state[current] = onPath
			path = append(path, current)
			current = nodes[current].Parent
		}
		if current != "" && state[current] == onPath {
			hasCycles = true
		}
		for _, frame := range path {
			state[frame] = done
		}
	}
	return hasCycles
}

// assignLevels runs a breadth-first walk from root, setting each frame's
// level to its parent's plus one. Frames already reached by an earlier
// root keep their level.
func assignLevels(nodes map[tf.FrameID]*FrameNode, root tf.FrameID, reached map[tf.FrameID]bool) {
	if reached[root] {
		return
	}
	reached[root] = true
	nodes[root].Level = 0
	queue := []tf.FrameID{root}
	for len(queue) > 0 {
		current := nodes[queue[0]]
		queue = queue[1:]
		for _, child := range current.Children {
			if reached[child] {
				continue
			}
			reached[child] = true
			nodes[child].Level = current.Level + 1
			queue = append(queue, child)
		}
	}
}

// promotionCandidate picks the unreached frame with the most children,
// breaking ties by the smallest frame id. frames is sorted, so the first
// strictly greater count wins.
func promotionCandidate(nodes map[tf.FrameID]*FrameNode, frames []tf.FrameID, reached map[tf.FrameID]bool) tf.FrameID {
	var best tf.FrameID
	bestCount := -1
	for _, frame := range frames {
		if reached[frame] {
			continue
		}
		if count := len(nodes[frame].Children); count > bestCount {
			best, bestCount = frame, count
		}
	}
	return best
}

// promote turns frame into a synthetic root by cutting the edge from its
// parent.
func promote(nodes map[tf.FrameID]*FrameNode, frame tf.FrameID) {
	node := nodes[frame]
	if node.Parent != "" {
		parent := nodes[node.Parent]
		parent.Children = removeFrame(parent.Children, frame)
		node.Parent = ""
	}
	node.IsRoot = true
	node.Synthetic = true
}

func removeFrame(frames []tf.FrameID, frame tf.FrameID) []tf.FrameID {
	return slices.DeleteFunc(frames, func(candidate tf.FrameID) bool { return candidate == frame })
}
