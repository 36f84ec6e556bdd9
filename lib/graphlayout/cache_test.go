// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"reflect"
	"testing"
)

func TestKeyNormalisesOptions(t *testing.T) {
	t.Parallel()
	graph := chain("a", "b")
	zero, err := Key(graph, Options{})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	defaults, err := Key(graph, DefaultOptions())
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if zero != defaults {
		t.Error("zero options and default options produced different keys")
	}
	sideways, _ := Key(graph, Options{Direction: LeftToRight})
	if sideways == defaults {
		t.Error("direction change did not change the key")
	}
	longer, _ := Key(chain("a", "b", "c"), Options{})
	if longer == defaults {
		t.Error("graph change did not change the key")
	}
}

func TestCacheHitReturnsSameLayout(t *testing.T) {
	t.Parallel()
	cache := NewCache(2)
	first := cache.Layout(branching(), Options{})
	second := cache.Layout(branching(), Options{})
	if !reflect.DeepEqual(first, second) {
		t.Error("cached layout differs from computed layout")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()
	cache := NewCache(2)
	cache.Layout(chain("a"), Options{})
	cache.Layout(chain("b"), Options{})
	cache.Layout(chain("a"), Options{})
	cache.Layout(chain("c"), Options{})

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}
	keyA, _ := Key(chain("a"), Options{})
	keyB, _ := Key(chain("b"), Options{})
	cache.mu.Lock()
	_, hasA := cache.entries[keyA]
	_, hasB := cache.entries[keyB]
	cache.mu.Unlock()
	if !hasA || hasB {
		t.Errorf("after eviction: has a=%v b=%v, want a kept and b evicted", hasA, hasB)
	}

	cache.Purge()
	if cache.Len() != 0 {
		t.Errorf("Len after Purge: got %d", cache.Len())
	}
}

func TestCacheDisabled(t *testing.T) {
	t.Parallel()
	cache := NewCache(0)
	cache.Layout(chain("a"), Options{})
	if cache.Len() != 0 {
		t.Errorf("Len: got %d, want 0", cache.Len())
	}
}
