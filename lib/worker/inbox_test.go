// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"testing"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
)

func entry(commandType panel.CommandType, id string) inboxEntry {
	return inboxEntry{commandType: commandType, panelID: id, data: []byte(id)}
}

func TestInboxEvictsOldestTelemetry(t *testing.T) {
	t.Parallel()
	queue := newInbox(3)
	queue.push(entry(panel.CommandConfigure, "config"))
	queue.push(entry(panel.CommandProcessMessage, "m1"))
	queue.push(entry(panel.CommandProcessMessage, "m2"))

	evicted, ok := queue.push(entry(panel.CommandProcessMessage, "m3"))
	if !ok || evicted == nil || evicted.panelID != "m1" {
		t.Fatalf("push into full inbox: evicted %+v ok=%v, want m1", evicted, ok)
	}

	var order []string
	for _, queued := range queue.drain() {
		order = append(order, queued.panelID)
	}
	if want := []string{"config", "m2", "m3"}; len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Errorf("order: got %v, want %v", order, want)
	}
	if queue.evictions() != 1 {
		t.Errorf("evictions: got %d, want 1", queue.evictions())
	}
}

func TestInboxNeverEvictsConfiguration(t *testing.T) {
	t.Parallel()
	queue := newInbox(2)
	queue.push(entry(panel.CommandConfigure, "c1"))
	queue.push(entry(panel.CommandRemovePanel, "c2"))
	if _, ok := queue.push(entry(panel.CommandProcessMessage, "m")); ok {
		t.Error("push succeeded although only configuration was queued")
	}
	if queue.len() != 2 {
		t.Errorf("len: got %d, want 2", queue.len())
	}
}

func TestInboxNotifyCoalesces(t *testing.T) {
	t.Parallel()
	queue := newInbox(8)
	queue.push(entry(panel.CommandProcessMessage, "a"))
	queue.push(entry(panel.CommandProcessMessage, "b"))
	<-queue.notify
	select {
	case <-queue.notify:
		t.Error("second notification pending; want a single coalesced signal")
	default:
	}
	if len(queue.drain()) != 2 {
		t.Error("drain lost entries")
	}
}
