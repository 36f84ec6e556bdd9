// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rosgraph defines the computation-graph snapshot the bridge
// collaborator publishes: the running nodes, the known topics, and the
// publisher→subscriber connections between them.
package rosgraph

// NodeInfo describes one running node. Publications and Subscriptions
// list topic names; either may be empty when the bridge reports
// connections separately.
type NodeInfo struct {
	Name          string   `json:"name"`
	Publications  []string `json:"publications,omitempty"`
	Subscriptions []string `json:"subscriptions,omitempty"`
	Services      []string `json:"services,omitempty"`
}

// TopicInfo describes one topic and its message type.
type TopicInfo struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ConnectionInfo is one publisher→subscriber link over a topic.
type ConnectionInfo struct {
	Publisher  string `json:"publisher"`
	Subscriber string `json:"subscriber"`
	Topic      string `json:"topic"`
}

// Snapshot is a point-in-time view of the computation graph.
type Snapshot struct {
	Nodes       []NodeInfo       `json:"nodes"`
	Topics      []TopicInfo      `json:"topics"`
	Connections []ConnectionInfo `json:"connections,omitempty"`
}

// TopicType returns the message type recorded for topic, or "" when the
// snapshot does not list it.
func (snapshot Snapshot) TopicType(topic string) string {
	for _, info := range snapshot.Topics {
		if info.Name == topic {
			return info.Type
		}
	}
	return ""
}
