// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plot

import "github.com/bureau-foundation/robodash/lib/schema/panel"

// ring is a bounded circular buffer of samples. Storage grows with
// the samples pushed, up to capacity; pushing into a full ring
// overwrites the oldest sample.
type ring struct {
	buffer   []panel.Sample
	capacity int
	start    int
}

func newRing(capacity int) *ring {
	return &ring{capacity: max(capacity, 1)}
}

func (r *ring) push(sample panel.Sample) {
	if len(r.buffer) < r.capacity {
		r.buffer = append(r.buffer, sample)
		return
	}
	r.buffer[r.start] = sample
	r.start = (r.start + 1) % r.capacity
}

// samples returns the buffered samples oldest first.
func (r *ring) samples() []panel.Sample {
	out := make([]panel.Sample, 0, len(r.buffer))
	out = append(out, r.buffer[r.start:]...)
	return append(out, r.buffer[:r.start]...)
}

func (r *ring) clear() {
	r.buffer, r.start = nil, 0
}
