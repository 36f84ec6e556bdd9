// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compgraph converts a computation-graph snapshot (running
// nodes, topics, and publisher→subscriber connections) into a
// [graphlayout.Graph].
//
// Node ids are "node:<name>" and topic ids "topic:<name>", so a node
// and a topic sharing a name never collide. With topics shown, every
// publication becomes node→topic and every subscription topic→node.
// With topics hidden, each publisher→subscriber pair becomes a single
// node→node edge whose "topics" attribute lists the topics it carries.
//
// Connections are the union of the snapshot's explicit connection list
// and the connections implied by each node's publications and
// subscriptions. Duplicates collapse.
package compgraph

import (
	"slices"
	"strings"

	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/schema/rosgraph"
)

// Options selects what the built graph contains.
type Options struct {
	// FilterSystemNodes drops infrastructure nodes and topics (logging,
	// bridge, introspection daemons) and hidden names.
	FilterSystemNodes bool `yaml:"filter_system_nodes"`
	// ShowTopics renders topics as vertices between publishers and
	// subscribers.
	ShowTopics bool `yaml:"show_topics"`
}

// systemPrefixes are names of infrastructure nodes and topics that add
// clutter without describing the robot's own data flow.
var systemPrefixes = []string{
	"/rosout",
	"/rosapi",
	"/rosbridge",
	"/_ros2cli",
	"/launch_ros",
	"/transform_listener_impl",
	"/parameter_events",
	"/client_count",
	"/connected_clients",
}

// IsSystemName reports whether a node or topic name belongs to the
// middleware itself. Names with any path segment starting with "_" are
// hidden by convention and also count.
func IsSystemName(name string) bool {
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for segment := range strings.SplitSeq(name, "/") {
		if strings.HasPrefix(segment, "_") {
			return true
		}
	}
	return false
}

// NodeID returns the graph id for a node name.
func NodeID(name string) string { return "node:" + name }

// TopicID returns the graph id for a topic name.
func TopicID(name string) string { return "topic:" + name }

type connection struct {
	publisher, subscriber, topic string
}

// Connections returns the deduplicated publisher→subscriber links of
// snapshot, sorted by publisher, subscriber, then topic.
func Connections(snapshot rosgraph.Snapshot) []rosgraph.ConnectionInfo {
	seen := make(map[connection]bool)
	var links []rosgraph.ConnectionInfo
	add := func(publisher, subscriber, topic string) {
		key := connection{publisher, subscriber, topic}
		if publisher == "" || subscriber == "" || topic == "" || seen[key] {
			return
		}
		seen[key] = true
		links = append(links, rosgraph.ConnectionInfo{Publisher: publisher, Subscriber: subscriber, Topic: topic})
	}

	for _, link := range snapshot.Connections {
		add(link.Publisher, link.Subscriber, link.Topic)
	}
	publishers := make(map[string][]string)
	for _, node := range snapshot.Nodes {
		for _, topic := range node.Publications {
			publishers[topic] = append(publishers[topic], node.Name)
		}
	}
	for _, node := range snapshot.Nodes {
		for _, topic := range node.Subscriptions {
			for _, publisher := range publishers[topic] {
				add(publisher, node.Name, topic)
			}
		}
	}

	slices.SortFunc(links, func(a, b rosgraph.ConnectionInfo) int {
		return strings.Compare(a.Publisher+"\x00"+a.Subscriber+"\x00"+a.Topic, b.Publisher+"\x00"+b.Subscriber+"\x00"+b.Topic)
	})
	return links
}

// Build converts snapshot into a layout graph.
func Build(snapshot rosgraph.Snapshot, options Options) graphlayout.Graph {
	hidden := func(name string) bool {
		return options.FilterSystemNodes && IsSystemName(name)
	}

	graph := graphlayout.Graph{Nodes: []graphlayout.Node{}, Edges: []graphlayout.Edge{}}
	nodes := make(map[string]bool)
	addNode := func(name string) {
		if name == "" || nodes[name] || hidden(name) {
			return
		}
		nodes[name] = true
		graph.Nodes = append(graph.Nodes, graphlayout.Node{
			ID:    NodeID(name),
			Label: name,
			Kind:  graphlayout.KindNode,
		})
	}

	for _, node := range snapshot.Nodes {
		addNode(node.Name)
	}
	links := Connections(snapshot)
	for _, link := range links {
		addNode(link.Publisher)
		addNode(link.Subscriber)
	}

	var visible []rosgraph.ConnectionInfo
	for _, link := range links {
		if nodes[link.Publisher] && nodes[link.Subscriber] && !hidden(link.Topic) {
			visible = append(visible, link)
		}
	}

	if options.ShowTopics {
		addTopics(&graph, snapshot, visible, hidden)
	} else {
		addNodeEdges(&graph, visible)
	}
	return graph
}

// addTopics adds a vertex per topic and the publisher→topic and
// topic→subscriber edges. Topics with publishers or subscribers but no
// complete connection are still shown, attached to whichever side is
// known.
func addTopics(graph *graphlayout.Graph, snapshot rosgraph.Snapshot, links []rosgraph.ConnectionInfo, hidden func(string) bool) {
	topics := make(map[string]bool)
	addTopic := func(name string) bool {
		if name == "" || hidden(name) {
			return false
		}
		if !topics[name] {
			topics[name] = true
			data := map[string]any{}
			if messageType := snapshot.TopicType(name); messageType != "" {
				data["type"] = messageType
			}
			graph.Nodes = append(graph.Nodes, graphlayout.Node{
				ID:    TopicID(name),
				Label: name,
				Kind:  graphlayout.KindTopic,
				Data:  data,
			})
		}
		return true
	}

	edges := make(map[string]bool)
	addEdge := func(source, target string) {
		id := source + "->" + target
		if edges[id] {
			return
		}
		edges[id] = true
		graph.Edges = append(graph.Edges, graphlayout.Edge{ID: id, Source: source, Target: target})
	}

	present := make(map[string]bool, len(graph.Nodes))
	for _, node := range graph.Nodes {
		present[node.Label] = true
	}

	for _, link := range links {
		addTopic(link.Topic)
		addEdge(NodeID(link.Publisher), TopicID(link.Topic))
		addEdge(TopicID(link.Topic), NodeID(link.Subscriber))
	}
	for _, node := range snapshot.Nodes {
		if !present[node.Name] {
			continue
		}
		for _, topic := range node.Publications {
			if addTopic(topic) {
				addEdge(NodeID(node.Name), TopicID(topic))
			}
		}
		for _, topic := range node.Subscriptions {
			if addTopic(topic) {
				addEdge(TopicID(topic), NodeID(node.Name))
			}
		}
	}
}

// addNodeEdges collapses each publisher→subscriber pair into one edge
// listing the topics between them.
func addNodeEdges(graph *graphlayout.Graph, links []rosgraph.ConnectionInfo) {
	index := make(map[string]int)
	for _, link := range links {
		source, target := NodeID(link.Publisher), NodeID(link.Subscriber)
		id := source + "->" + target
		position, ok := index[id]
		if !ok {
			position = len(graph.Edges)
			index[id] = position
			graph.Edges = append(graph.Edges, graphlayout.Edge{
				ID:         id,
				Source:     source,
				Target:     target,
				Attributes: map[string]any{"topics": []string{}},
			})
		}
		topics := graph.Edges[position].Attributes["topics"].([]string)
		graph.Edges[position].Attributes["topics"] = append(topics, link.Topic)
	}
}
