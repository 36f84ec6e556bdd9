// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"fmt"
	"maps"
	"time"

	"github.com/bureau-foundation/robodash/lib/framegraph"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// DecorateEdges returns copies of edges annotated with freshness
// metadata. An edge is looked up in lastUpdate by its
// "source->target" key; edges without an entry are copied unchanged.
// Decorated edges get freshness, color, animated and age_ms
// attributes, and a "%.2fm" label when they carry a distance. The
// input edges and their attribute maps are not modified.
func DecorateEdges(edges []Edge, lastUpdate map[string]time.Time, now time.Time, thresholds framegraph.Thresholds) []Edge {
	decorated := make([]Edge, len(edges))
	for i, edge := range edges {
		decorated[i] = edge
		observed, ok := lastUpdate[tf.EdgeKey(tf.FrameID(edge.Source), tf.FrameID(edge.Target))]
		if !ok {
			continue
		}
		age := now.Sub(observed)
		band := thresholds.Classify(age)

		attributes := maps.Clone(edge.Attributes)
		if attributes == nil {
			attributes = make(map[string]any, 5)
		}
		attributes[AttributeFreshness] = band.String()
		attributes[AttributeColor] = band.Color()
		attributes[AttributeAnimated] = thresholds.Animated(age)
		attributes[AttributeAgeMillis] = age.Milliseconds()
		if distance, ok := attributes[AttributeDistance].(float64); ok {
			attributes[AttributeLabel] = fmt.Sprintf("%.2fm", distance)
		}
		decorated[i].Attributes = attributes
	}
	return decorated
}
