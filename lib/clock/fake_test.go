// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeStandsStill(t *testing.T) {
	t.Parallel()
	c := Fake(epoch)
	if got := c.Now(); !got.Equal(epoch) {
		t.Errorf("Now: got %v, want %v", got, epoch)
	}
	if got := c.Now(); !got.Equal(epoch) {
		t.Errorf("second Now: got %v, want %v", got, epoch)
	}
}

func TestFakeAdvance(t *testing.T) {
	t.Parallel()
	c := Fake(epoch)
	c.Advance(1500 * time.Millisecond)
	if got := Since(c, epoch); got != 1500*time.Millisecond {
		t.Errorf("Since after Advance: got %v, want 1.5s", got)
	}

	c.Advance(-time.Hour)
	if got := Since(c, epoch); got != 1500*time.Millisecond {
		t.Errorf("negative Advance moved the clock: got %v", got)
	}
}

func TestFakeSet(t *testing.T) {
	t.Parallel()
	c := Fake(epoch)
	earlier := epoch.Add(-time.Minute)
	c.Set(earlier)
	if got := c.Now(); !got.Equal(earlier) {
		t.Errorf("Now after Set: got %v, want %v", got, earlier)
	}
}

func TestRealIsMonotonicEnough(t *testing.T) {
	t.Parallel()
	c := Real()
	first := c.Now()
	second := c.Now()
	if second.Before(first) {
		t.Errorf("Real clock went backwards: %v then %v", first, second)
	}
}
