// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Freshness classification, render-state timestamps, and the live frame
// view all depend on "now". Production code receives Real(); tests
// receive Fake() and move time explicitly with Advance or Set, which
// makes freshness bands testable without sleeping.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	store.Apply(record) // observed at c.Now()
//	c.Advance(3 * time.Second)
//	// edge is now "Recent"
package clock
