// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"slices"
	"testing"
	"time"

	"github.com/bureau-foundation/robodash/lib/clock"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

var epoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestStoreApply(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(epoch)
	store := NewStore(fake)

	if store.Apply(edge("a", "a")) {
		t.Error("Apply accepted a self-edge")
	}
	if !store.Apply(edge("map", "odom")) {
		t.Fatal("Apply rejected map->odom")
	}
	fake.Advance(2 * time.Second)
	store.Apply(edge("odom", "base_link"))
	fake.Advance(time.Second)
	store.Apply(edge("map", "base_link"))

	if store.Len() != 2 {
		t.Errorf("Len: got %d, want 2", store.Len())
	}
	records := store.Records()
	if records[0].Child != "base_link" || records[0].Parent != "map" {
		t.Errorf("base_link record: got %+v", records[0])
	}

	updates := store.LastUpdate()
	if got := updates["map->odom"]; !got.Equal(epoch) {
		t.Errorf("map->odom: got %v, want %v", got, epoch)
	}
	if got := updates["odom->base_link"]; !got.Equal(epoch.Add(2 * time.Second)) {
		t.Errorf("odom->base_link: got %v", got)
	}
	if got := updates["map->base_link"]; !got.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("map->base_link: got %v", got)
	}
	if store.Generation() != 3 {
		t.Errorf("Generation: got %d, want 3", store.Generation())
	}

	tree := store.Tree()
	if got := tree.Nodes["map"].Children; !slices.Equal(got, []tf.FrameID{"base_link", "odom"}) {
		t.Errorf("map children: got %v", got)
	}
}

func TestStoreKeepsObservedTime(t *testing.T) {
	t.Parallel()
	store := NewStore(clock.Fake(epoch))
	record := edge("map", "odom")
	record.ObservedAt = epoch.Add(-time.Minute)
	store.Apply(record)

	age, static, ok := store.Age("odom")
	if !ok || static || age != time.Minute {
		t.Errorf("Age: got %v static=%v ok=%v, want 1m", age, static, ok)
	}
	if _, _, ok := store.Age("map"); ok {
		t.Error("Age of a parent-only frame: got ok")
	}
}

func TestStoreStaleFrames(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(epoch)
	store := NewStore(fake)
	static := edge("base_link", "laser")
	static.IsStatic = true
	store.ApplyAll([]tf.TransformRecord{edge("map", "odom"), static})
	fake.Advance(3 * time.Second)
	store.Apply(edge("odom", "base_link"))

	stale := store.StaleFrames(fake.Now(), 2*time.Second)
	if want := []tf.FrameID{"odom"}; !slices.Equal(stale, want) {
		t.Errorf("StaleFrames: got %v, want %v", stale, want)
	}
	if want := []tf.FrameID{"base_link", "laser", "map", "odom"}; !slices.Equal(store.Frames(), want) {
		t.Errorf("Frames: got %v, want %v", store.Frames(), want)
	}
}

func TestStoreLastUpdateIsACopy(t *testing.T) {
	t.Parallel()
	store := NewStore(clock.Fake(epoch))
	store.Apply(edge("map", "odom"))
	updates := store.LastUpdate()
	delete(updates, "map->odom")
	if _, ok := store.LastUpdate()["map->odom"]; !ok {
		t.Error("mutating the returned map changed the store")
	}
}
