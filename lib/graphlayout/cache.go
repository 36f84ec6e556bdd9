// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/robodash/lib/codec"
)

// CacheKey is the BLAKE3 digest identifying a (graph, options) pair.
type CacheKey [32]byte

// cacheDomainKey separates layout cache digests from any other BLAKE3
// use of the same bytes. ASCII "robodash.graphlayout.cache",
// zero-padded to 32 bytes.
var cacheDomainKey = [32]byte{
	'r', 'o', 'b', 'o', 'd', 'a', 's', 'h', '.', 'g', 'r', 'a', 'p', 'h', 'l', 'a',
	'y', 'o', 'u', 't', '.', 'c', 'a', 'c', 'h', 'e', 0, 0, 0, 0, 0, 0,
}

// Key computes the cache key for laying out graph with options. Options
// are normalised first, so zero fields and their defaults share a key.
func Key(graph Graph, options Options) (CacheKey, error) {
	encoded, err := codec.Marshal(struct {
		Graph   Graph   `cbor:"graph"`
		Options Options `cbor:"options"`
	}{graph, options.withDefaults()})
	if err != nil {
		return CacheKey{}, fmt.Errorf("encoding layout cache key: %w", err)
	}
	hasher, err := blake3.NewKeyed(cacheDomainKey[:])
	if err != nil {
		return CacheKey{}, fmt.Errorf("initializing layout cache hasher: %w", err)
	}
	hasher.Write(encoded)
	var key CacheKey
	copy(key[:], hasher.Sum(nil))
	return key, nil
}

// Cache memoises [Layout] results with least-recently-used eviction.
// Live dashboards re-request the same layout on every render until the
// structure changes, so hits dominate. Safe for concurrent use.
type Cache struct {
	capacity int

	mu      sync.Mutex
	order   *list.List
	entries map[CacheKey]*list.Element
}

type cacheEntry struct {
	key    CacheKey
	layout LaidOutGraph
}

// NewCache creates a cache holding at most capacity layouts. A capacity
// below one disables caching.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[CacheKey]*list.Element),
	}
}

// Layout returns the cached layout for (graph, options), computing and
// storing it on a miss. Graphs whose data cannot be encoded are laid
// out without caching. The returned layout may be shared with other
// callers and must not be modified.
func (c *Cache) Layout(graph Graph, options Options) LaidOutGraph {
	if c == nil || c.capacity < 1 {
		return Layout(graph, options)
	}
	key, err := Key(graph, options)
	if err != nil {
		return Layout(graph, options)
	}

	c.mu.Lock()
	if element, ok := c.entries[key]; ok {
		c.order.MoveToFront(element)
		layout := element.Value.(*cacheEntry).layout
		c.mu.Unlock()
		cacheLookups.WithLabelValues("hit").Inc()
		return layout
	}
	c.mu.Unlock()
	cacheLookups.WithLabelValues("miss").Inc()

	layout := Layout(graph, options)

	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.entries[key]; ok {
		c.order.MoveToFront(element)
		return element.Value.(*cacheEntry).layout
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, layout: layout})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return layout
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every cached layout.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.entries)
}
