// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compgraph

import (
	"slices"
	"testing"

	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/schema/rosgraph"
)

func snapshot() rosgraph.Snapshot {
	return rosgraph.Snapshot{
		Nodes: []rosgraph.NodeInfo{
			{Name: "/lidar_driver", Publications: []string{"/scan", "/rosout"}},
			{Name: "/slam", Subscriptions: []string{"/scan", "/odom"}, Publications: []string{"/map"}},
			{Name: "/odometry", Publications: []string{"/odom"}},
			{Name: "/rosbridge_websocket", Subscriptions: []string{"/map"}},
			{Name: "/rosout", Subscriptions: []string{"/rosout"}},
		},
		Topics: []rosgraph.TopicInfo{
			{Name: "/scan", Type: "sensor_msgs/msg/LaserScan"},
			{Name: "/odom", Type: "nav_msgs/msg/Odometry"},
			{Name: "/map", Type: "nav_msgs/msg/OccupancyGrid"},
		},
		Connections: []rosgraph.ConnectionInfo{
			{Publisher: "/lidar_driver", Subscriber: "/slam", Topic: "/scan"},
		},
	}
}

func ids(graph graphlayout.Graph) (nodes, edges []string) {
	for _, node := range graph.Nodes {
		nodes = append(nodes, node.ID)
	}
	for _, edge := range graph.Edges {
		edges = append(edges, edge.ID)
	}
	return nodes, edges
}

func TestIsSystemName(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"/rosout", "/rosout_agg", "/rosbridge_websocket", "/_ros2cli_daemon_0", "/robot/_hidden", "/parameter_events"} {
		if !IsSystemName(name) {
			t.Errorf("%s: want system", name)
		}
	}
	for _, name := range []string{"/slam", "/scan", "/robot/camera"} {
		if IsSystemName(name) {
			t.Errorf("%s: want not system", name)
		}
	}
}

func TestConnectionsDeduplicate(t *testing.T) {
	t.Parallel()
	links := Connections(snapshot())
	want := []rosgraph.ConnectionInfo{
		{Publisher: "/lidar_driver", Subscriber: "/rosout", Topic: "/rosout"},
		{Publisher: "/lidar_driver", Subscriber: "/slam", Topic: "/scan"},
		{Publisher: "/odometry", Subscriber: "/slam", Topic: "/odom"},
		{Publisher: "/slam", Subscriber: "/rosbridge_websocket", Topic: "/map"},
	}
	if !slices.Equal(links, want) {
		t.Errorf("got %+v\nwant %+v", links, want)
	}
}

func TestBuildWithoutTopics(t *testing.T) {
	t.Parallel()
	graph := Build(snapshot(), Options{FilterSystemNodes: true})
	nodes, edges := ids(graph)
	if want := []string{"node:/lidar_driver", "node:/slam", "node:/odometry"}; !slices.Equal(nodes, want) {
		t.Errorf("nodes: got %v, want %v", nodes, want)
	}
	if want := []string{"node:/lidar_driver->node:/slam", "node:/odometry->node:/slam"}; !slices.Equal(edges, want) {
		t.Errorf("edges: got %v, want %v", edges, want)
	}
	if topics := graph.Edges[0].Attributes["topics"]; !slices.Equal(topics.([]string), []string{"/scan"}) {
		t.Errorf("topics attribute: got %v", topics)
	}
}

func TestBuildWithTopics(t *testing.T) {
	t.Parallel()
	graph := Build(snapshot(), Options{FilterSystemNodes: true, ShowTopics: true})
	nodes, edges := ids(graph)
	for _, want := range []string{"topic:/scan", "topic:/odom", "topic:/map"} {
		if !slices.Contains(nodes, want) {
			t.Errorf("nodes: missing %s in %v", want, nodes)
		}
	}
	if slices.Contains(nodes, "topic:/rosout") {
		t.Error("system topic /rosout survived filtering")
	}
	for _, want := range []string{
		"node:/lidar_driver->topic:/scan",
		"topic:/scan->node:/slam",
		"node:/slam->topic:/map",
	} {
		if !slices.Contains(edges, want) {
			t.Errorf("edges: missing %s in %v", want, edges)
		}
	}
	for _, node := range graph.Nodes {
		if node.ID == "topic:/scan" && node.Data["type"] != "sensor_msgs/msg/LaserScan" {
			t.Errorf("topic type: got %v", node.Data["type"])
		}
	}
	// Every edge endpoint is a node.
	present := make(map[string]bool)
	for _, id := range nodes {
		present[id] = true
	}
	for _, edge := range graph.Edges {
		if !present[edge.Source] || !present[edge.Target] {
			t.Errorf("edge %s references a missing node", edge.ID)
		}
	}
}

func TestBuildUnfiltered(t *testing.T) {
	t.Parallel()
	graph := Build(snapshot(), Options{})
	nodes, _ := ids(graph)
	if !slices.Contains(nodes, "node:/rosbridge_websocket") || !slices.Contains(nodes, "node:/rosout") {
		t.Errorf("unfiltered build dropped system nodes: %v", nodes)
	}
}
