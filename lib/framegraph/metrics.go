// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	treeBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robodash_framegraph_tree_builds_total",
		Help: "Frame trees built from non-empty transform sets",
	})

	cyclesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robodash_framegraph_cycles_detected_total",
		Help: "Frame trees whose transform set contained a cycle",
	})

	syntheticPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robodash_framegraph_synthetic_roots_total",
		Help: "Frames promoted to synthetic roots",
	})

	// pathQueries counts path queries by result ("found" or "unreachable").
	pathQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robodash_framegraph_path_queries_total",
		Help: "Frame path queries by result",
	}, []string{"result"})

	pathQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "robodash_framegraph_path_query_duration_seconds",
		Help:    "Frame path query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
	})
)
