// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"sync"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
)

// inbox is a bounded FIFO of CBOR-encoded commands for one execution
// context. When full, Push evicts the oldest PROCESS_MESSAGE entry;
// other commands are never evicted.
//
// The notify channel (capacity 1) wakes the context goroutine when new
// commands arrive. Thread-safe.
type inbox struct {
	mu       sync.Mutex
	entries  []inboxEntry
	capacity int
	evicted  uint64
	notify   chan struct{}
}

type inboxEntry struct {
	commandType panel.CommandType
	panelID     string
	data        []byte
}

func newInbox(capacity int) *inbox {
	return &inbox{
		capacity: max(capacity, 1),
		notify:   make(chan struct{}, 1),
	}
}

// push appends an entry, evicting the oldest telemetry entry if the
// inbox is full. It returns the evicted entry, if any, and false when
// nothing could be evicted.
func (b *inbox) push(entry inboxEntry) (evicted *inboxEntry, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.capacity {
		index := -1
		for i := range b.entries {
			if b.entries[i].commandType == panel.CommandProcessMessage {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, false
		}
		dropped := b.entries[index]
		evicted = &dropped
		b.entries = append(b.entries[:index], b.entries[index+1:]...)
		b.evicted++
	}
	b.entries = append(b.entries, entry)

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return evicted, true
}

// drain removes and returns every queued entry in FIFO order.
func (b *inbox) drain() []inboxEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.entries
	b.entries = nil
	return entries
}

func (b *inbox) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *inbox) evictions() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}
