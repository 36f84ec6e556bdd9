// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// Store holds the live transform set: the latest record per child frame
// and the time each "parent->child" edge was last updated. Safe for
// concurrent use.
type Store struct {
	clock clock.Clock

	mu         sync.RWMutex
	records    map[tf.FrameID]tf.TransformRecord
	lastUpdate map[string]time.Time
	generation uint64
}

// NewStore creates an empty store. Records without an ObservedAt time
// are stamped with c.Now(). A nil clock uses the real clock.
func NewStore(c clock.Clock) *Store {
	if c == nil {
		c = clock.Real()
	}
	return &Store{
		clock:      c,
		records:    make(map[tf.FrameID]tf.TransformRecord),
		lastUpdate: make(map[string]time.Time),
	}
}

// Apply records a transform, replacing any earlier record for the same
// child. It returns false, leaving the store unchanged, for records that
// fail [tf.TransformRecord.Validate].
func (s *Store) Apply(record tf.TransformRecord) bool {
	if record.Validate() != nil {
		return false
	}
	if record.ObservedAt.IsZero() {
		record.ObservedAt = s.clock.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Child] = record
	if previous, ok := s.lastUpdate[record.EdgeKey()]; !ok || record.ObservedAt.After(previous) {
		s.lastUpdate[record.EdgeKey()] = record.ObservedAt
	}
	s.generation++
	return true
}

// ApplyAll applies each record in order and returns how many were
// accepted.
func (s *Store) ApplyAll(records []tf.TransformRecord) int {
	accepted := 0
	for _, record := range records {
		if s.Apply(record) {
			accepted++
		}
	}
	return accepted
}

// Records returns the active records sorted by child frame.
func (s *Store) Records() []tf.TransformRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]tf.TransformRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b tf.TransformRecord) int {
		switch {
		case a.Child < b.Child:
			return -1
		case a.Child > b.Child:
			return 1
		default:
			return 0
		}
	})
	return records
}

// Tree builds the frame tree for the active records.
func (s *Store) Tree() TreeStructure {
	return BuildTreeStructure(s.Records())
}

// LastUpdate returns a copy of the per-edge update times keyed by
// [tf.EdgeKey]. Edges whose child has since moved to another parent
// keep their entry.
func (s *Store) LastUpdate() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]time.Time, len(s.lastUpdate))
	for key, observed := range s.lastUpdate {
		snapshot[key] = observed
	}
	return snapshot
}

// Frames returns every frame named by an active record, sorted.
func (s *Store) Frames() []tf.FrameID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[tf.FrameID]bool, len(s.records)*2)
	var frames []tf.FrameID
	for _, record := range s.records {
		for _, frame := range []tf.FrameID{record.Parent, record.Child} {
			if !seen[frame] {
				seen[frame] = true
				frames = append(frames, frame)
			}
		}
	}
	slices.Sort(frames)
	return frames
}

// StaleFrames returns the child frames whose dynamic transform is older
// than maxAge at now. Static transforms never go stale.
func (s *Store) StaleFrames(now time.Time, maxAge time.Duration) []tf.FrameID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stale []tf.FrameID
	for child, record := range s.records {
		if record.IsStatic {
			continue
		}
		if now.Sub(record.ObservedAt) > maxAge {
			stale = append(stale, child)
		}
	}
	slices.Sort(stale)
	return stale
}

// Age returns how long ago the child frame's transform was observed,
// relative to the store's clock. ok is false for unknown frames.
func (s *Store) Age(child tf.FrameID) (age time.Duration, static bool, ok bool) {
	s.mu.RLock()
	record, ok := s.records[child]
	s.mu.RUnlock()
	if !ok {
		return 0, false, false
	}
	return clock.Since(s.clock, record.ObservedAt), record.IsStatic, true
}

// Generation increases on every accepted record. Callers cache derived
// structures against it.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of active records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
