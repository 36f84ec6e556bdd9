// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	layoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "robodash_graphlayout_duration_seconds",
		Help:    "Layered layout duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	})

	droppedEdges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robodash_graphlayout_dropped_edges_total",
		Help: "Edges dropped from layout because an endpoint was not a node",
	})

	searchMatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "robodash_graphlayout_search_matches",
		Help:    "Nodes directly matched by a search query",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	// cacheLookups counts layout cache lookups by result ("hit" or "miss").
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_graphlayout_cache_lookups_total",
		Help: "Layout cache lookups by result",
	}, []string{"result"})
)
