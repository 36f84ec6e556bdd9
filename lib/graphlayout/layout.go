// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"cmp"
	"slices"
	"time"
)

// orderingSweeps is the number of barycenter passes over the ranks,
// alternating downward and upward.
const orderingSweeps = 4

// balancingPasses is the number of neighbour-averaging passes used to
// straighten edges after ordering.
const balancingPasses = 8

// Layout positions every node of graph. Edges whose source or target is
// not a node are dropped from the result; all other edges are returned
// unchanged, in input order. When a node id appears more than once the
// first occurrence is used.
func Layout(graph Graph, options Options) LaidOutGraph {
	start := time.Now()
	defer func() { layoutDuration.Observe(time.Since(start).Seconds()) }()

	options = options.withDefaults()
	index := nodeIndex(graph.Nodes)

	nodes := make([]Node, 0, len(index))
	position := make(map[string]int, len(index))
	for i, node := range graph.Nodes {
		if index[node.ID] != i {
			continue
		}
		position[node.ID] = len(nodes)
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, len(graph.Edges))
	layers := newLayering(len(nodes))
	for _, edge := range graph.Edges {
		source, sourceOK := position[edge.Source]
		target, targetOK := position[edge.Target]
		if !sourceOK || !targetOK {
			droppedEdges.Inc()
			continue
		}
		edges = append(edges, edge)
		if source != target {
			layers.addEdge(source, target)
		}
	}

	layers.breakCycles()
	layers.assignRanks()
	layers.splitLongEdges()
	layers.orderRanks()

	orderSize, rankSize := options.NodeWidth, options.NodeHeight
	if options.Direction.horizontal() {
		orderSize, rankSize = options.NodeHeight, options.NodeWidth
	}
	along := layers.balance(orderSize, options.NodeSep)

	result := LaidOutGraph{
		Nodes: make([]PositionedNode, len(nodes)),
		Edges: edges,
	}
	if len(nodes) == 0 {
		result.Width = 2 * options.MarginX
		result.Height = 2 * options.MarginY
		return result
	}

	minimum, maximum := along[0]-orderSize/2, along[0]+orderSize/2
	for vertex := range nodes {
		minimum = min(minimum, along[vertex]-orderSize/2)
		maximum = max(maximum, along[vertex]+orderSize/2)
	}
	orderExtent := maximum - minimum
	rankExtent := float64(layers.maxRank+1)*rankSize + float64(layers.maxRank)*options.RankSep

	for vertex, node := range nodes {
		orderCenter := along[vertex] - minimum
		rankCenter := float64(layers.rank[vertex])*(rankSize+options.RankSep) + rankSize/2

		var centerX, centerY float64
		switch options.Direction {
		case BottomToTop:
			centerX, centerY = orderCenter, rankExtent-rankCenter
		case LeftToRight:
			centerX, centerY = rankCenter, orderCenter
		case RightToLeft:
			centerX, centerY = rankExtent-rankCenter, orderCenter
		default:
			centerX, centerY = orderCenter, rankCenter
		}

		result.Nodes[vertex] = PositionedNode{
			Node: node,
			Position: Position{
				X: centerX - options.NodeWidth/2 + options.MarginX,
				Y: centerY - options.NodeHeight/2 + options.MarginY,
			},
			Width:  options.NodeWidth,
			Height: options.NodeHeight,
		}
	}

	if options.Direction.horizontal() {
		result.Width, result.Height = rankExtent, orderExtent
	} else {
		result.Width, result.Height = orderExtent, rankExtent
	}
	result.Width += 2 * options.MarginX
	result.Height += 2 * options.MarginY
	return result
}

// layering holds the working state of the layered placement. Vertices
// 0..realCount-1 are graph nodes in input order; later vertices are
// virtual nodes created by splitLongEdges.
type layering struct {
	realCount int

	// out lists each real vertex's successors in edge input order.
	out [][]int
	// dag holds the deduplicated edges after cycle breaking.
	dag  [][2]int
	seen map[[2]int]bool

	rank    []int
	maxRank int

	// upper and lower are each vertex's neighbours in the rank above
	// and below, after long edges are split.
	upper, lower [][]int
	ranks        [][]int
	order        []int
}

func newLayering(count int) *layering {
	return &layering{
		realCount: count,
		out:       make([][]int, count),
		seen:      make(map[[2]int]bool),
	}
}

func (l *layering) addEdge(source, target int) {
	l.out[source] = append(l.out[source], target)
}

func (l *layering) addDAGEdge(source, target int) {
	key := [2]int{source, target}
	if l.seen[key] {
		return
	}
	l.seen[key] = true
	l.dag = append(l.dag, key)
}

// breakCycles runs an iterative depth-first search in input order and
// reverses every edge that points back into the current search path.
func (l *layering) breakCycles() {
	const (
		white = iota
		grey
		black
	)
	type frame struct{ vertex, next int }

	state := make([]int, l.realCount)
	for root := range l.realCount {
		if state[root] != white {
			continue
		}
		state[root] = grey
		stack := []frame{{vertex: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(l.out[top.vertex]) {
				state[top.vertex] = black
				stack = stack[:len(stack)-1]
				continue
			}
			source, target := top.vertex, l.out[top.vertex][top.next]
			top.next++
			switch state[target] {
			case grey:
				l.addDAGEdge(target, source)
			case white:
				l.addDAGEdge(source, target)
				state[target] = grey
				stack = append(stack, frame{vertex: target})
			default:
				l.addDAGEdge(source, target)
			}
		}
	}
}

// assignRanks gives every vertex the length of the longest path reaching
// it from a source.
func (l *layering) assignRanks() {
	l.rank = make([]int, l.realCount)
	indegree := make([]int, l.realCount)
	successors := make([][]int, l.realCount)
	for _, edge := range l.dag {
		successors[edge[0]] = append(successors[edge[0]], edge[1])
		indegree[edge[1]]++
	}

	queue := make([]int, 0, l.realCount)
	for vertex := range l.realCount {
		if indegree[vertex] == 0 {
			queue = append(queue, vertex)
		}
	}
	for head := 0; head < len(queue); head++ {
		vertex := queue[head]
		for _, next := range successors[vertex] {
			l.rank[next] = max(l.rank[next], l.rank[vertex]+1)
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	for _, r := range l.rank {
		l.maxRank = max(l.maxRank, r)
	}
}

// splitLongEdges replaces every edge spanning more than one rank with a
// chain of virtual vertices, one per intermediate rank.
func (l *layering) splitLongEdges() {
	l.upper = make([][]int, l.realCount)
	l.lower = make([][]int, l.realCount)
	for _, edge := range l.dag {
		source, target := edge[0], edge[1]
		previous := source
		for r := l.rank[source] + 1; r < l.rank[target]; r++ {
			virtual := len(l.rank)
			l.rank = append(l.rank, r)
			l.upper = append(l.upper, nil)
			l.lower = append(l.lower, nil)
			l.link(previous, virtual)
			previous = virtual
		}
		l.link(previous, target)
	}

	l.ranks = make([][]int, l.maxRank+1)
	for vertex, r := range l.rank {
		l.ranks[r] = append(l.ranks[r], vertex)
	}
	l.order = make([]int, len(l.rank))
	l.renumber()
}

func (l *layering) link(upper, lower int) {
	l.lower[upper] = append(l.lower[upper], lower)
	l.upper[lower] = append(l.upper[lower], upper)
}

func (l *layering) renumber() {
	for _, vertices := range l.ranks {
		for i, vertex := range vertices {
			l.order[vertex] = i
		}
	}
}

// orderRanks reduces crossings with alternating barycenter sweeps and
// keeps the ordering with the fewest crossings seen.
func (l *layering) orderRanks() {
	best := l.snapshot()
	bestCrossings := l.crossings()
	for sweep := range orderingSweeps {
		if sweep%2 == 0 {
			for r := 1; r <= l.maxRank; r++ {
				l.sortByBarycenter(l.ranks[r], l.upper)
			}
		} else {
			for r := l.maxRank - 1; r >= 0; r-- {
				l.sortByBarycenter(l.ranks[r], l.lower)
			}
		}
		if crossings := l.crossings(); crossings < bestCrossings {
			best, bestCrossings = l.snapshot(), crossings
		}
	}
	l.ranks = best
	l.renumber()
}

func (l *layering) snapshot() [][]int {
	copied := make([][]int, len(l.ranks))
	for r, vertices := range l.ranks {
		copied[r] = slices.Clone(vertices)
	}
	return copied
}

// sortByBarycenter reorders one rank by the mean order of each vertex's
// neighbours in the adjacent rank. Vertices without neighbours keep
// their current slot as their barycenter. The sort is stable so equal
// barycenters keep their relative order.
func (l *layering) sortByBarycenter(vertices []int, neighbours [][]int) {
	barycenter := make(map[int]float64, len(vertices))
	for _, vertex := range vertices {
		adjacent := neighbours[vertex]
		if len(adjacent) == 0 {
			barycenter[vertex] = float64(l.order[vertex])
			continue
		}
		sum := 0.0
		for _, other := range adjacent {
			sum += float64(l.order[other])
		}
		barycenter[vertex] = sum / float64(len(adjacent))
	}
	slices.SortStableFunc(vertices, func(a, b int) int {
		return cmp.Compare(barycenter[a], barycenter[b])
	})
	for i, vertex := range vertices {
		l.order[vertex] = i
	}
}

// crossings counts edge crossings between every pair of adjacent ranks.
func (l *layering) crossings() int {
	total := 0
	for r := 0; r < l.maxRank; r++ {
		type segment struct{ top, bottom int }
		var segments []segment
		for _, vertex := range l.ranks[r] {
			for _, below := range l.lower[vertex] {
				segments = append(segments, segment{l.order[vertex], l.order[below]})
			}
		}
		for i := range segments {
			for j := i + 1; j < len(segments); j++ {
				a, b := segments[i], segments[j]
				if (a.top-b.top)*(a.bottom-b.bottom) < 0 {
					total++
				}
			}
		}
	}
	return total
}

// balance assigns each vertex a coordinate along its rank. Real
// vertices occupy size and keep nodeSep between them; virtual vertices
// have no extent and keep half the separation.
func (l *layering) balance(size, nodeSep float64) []float64 {
	extent := func(vertex int) float64 {
		if vertex < l.realCount {
			return size
		}
		return 0
	}
	gap := func(a, b int) float64 {
		separation := nodeSep
		if a >= l.realCount || b >= l.realCount {
			separation = nodeSep / 2
		}
		return extent(a)/2 + separation + extent(b)/2
	}

	coordinate := make([]float64, len(l.rank))
	for _, vertices := range l.ranks {
		for i, vertex := range vertices {
			if i > 0 {
				coordinate[vertex] = coordinate[vertices[i-1]] + gap(vertices[i-1], vertex)
			}
		}
		if len(vertices) > 0 {
			middle := coordinate[vertices[len(vertices)-1]] / 2
			for _, vertex := range vertices {
				coordinate[vertex] -= middle
			}
		}
	}

	desired := make([]float64, len(l.rank))
	forward := make([]float64, len(l.rank))
	backward := make([]float64, len(l.rank))
	place := func(vertices []int, neighbours [][]int) {
		for _, vertex := range vertices {
			adjacent := neighbours[vertex]
			if len(adjacent) == 0 {
				desired[vertex] = coordinate[vertex]
				continue
			}
			sum := 0.0
			for _, other := range adjacent {
				sum += coordinate[other]
			}
			desired[vertex] = sum / float64(len(adjacent))
		}
		for i, vertex := range vertices {
			forward[vertex] = desired[vertex]
			if i > 0 {
				previous := vertices[i-1]
				forward[vertex] = max(forward[vertex], forward[previous]+gap(previous, vertex))
			}
		}
		for i := len(vertices) - 1; i >= 0; i-- {
			vertex := vertices[i]
			backward[vertex] = desired[vertex]
			if i < len(vertices)-1 {
				next := vertices[i+1]
				backward[vertex] = min(backward[vertex], backward[next]-gap(vertex, next))
			}
		}
		for _, vertex := range vertices {
			coordinate[vertex] = (forward[vertex] + backward[vertex]) / 2
		}
	}

	for pass := range balancingPasses {
		if pass%2 == 0 {
			for r := 1; r <= l.maxRank; r++ {
				place(l.ranks[r], l.upper)
			}
		} else {
			for r := l.maxRank - 1; r >= 0; r-- {
				place(l.ranks[r], l.lower)
			}
		}
	}
	return coordinate
}
