// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"slices"
	"time"

	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// FindPath returns the frames visited going from one frame to another
// through their nearest common ancestor, both ends included. The result
// is empty when either frame is unknown or the two frames share no
// ancestor.
func FindPath(nodes map[tf.FrameID]*FrameNode, from, to tf.FrameID) []tf.FrameID {
	start := time.Now()
	path := findPath(nodes, from, to)
	result := "found"
	if len(path) == 0 {
		result = "unreachable"
	}
	pathQueries.WithLabelValues(result).Inc()
	pathQueryDuration.Observe(time.Since(start).Seconds())
	return path
}

func findPath(nodes map[tf.FrameID]*FrameNode, from, to tf.FrameID) []tf.FrameID {
	if nodes[from] == nil || nodes[to] == nil {
		return nil
	}
	if from == to {
		return []tf.FrameID{from}
	}

	fromPath := RootPath(nodes, from)
	toPath := RootPath(nodes, to)
	toIndex := make(map[tf.FrameID]int, len(toPath))
	for index, frame := range toPath {
		toIndex[frame] = index
	}

	for fromIndex, frame := range fromPath {
		common, ok := toIndex[frame]
		if !ok {
			continue
		}
		path := make([]tf.FrameID, 0, fromIndex+common+1)
		path = append(path, fromPath[:fromIndex+1]...)
		tail := slices.Clone(toPath[:common])
		slices.Reverse(tail)
		return append(path, tail...)
	}
	return nil
}

// RootPath returns frame followed by each of its ancestors up to a root.
// The walk stops if it meets a frame twice, so a cyclic chain yields
// each frame once.
func RootPath(nodes map[tf.FrameID]*FrameNode, frame tf.FrameID) []tf.FrameID {
	visited := make(map[tf.FrameID]bool)
	var path []tf.FrameID
	for current := frame; current != "" && !visited[current]; {
		node := nodes[current]
		if node == nil {
			break
		}
		visited[current] = true
		path = append(path, current)
		current = node.Parent
	}
	return path
}
