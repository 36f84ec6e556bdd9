// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for robodash packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so individual tests
// never call time.After themselves. Worker tests wait on response
// channels through these helpers; everything else in the suite runs on
// a fake clock.
//
// [RequireNoReceive] asserts that a channel stays silent for a short
// window. Tests use it to check that a late worker response for a
// removed panel was swallowed by the demultiplexer.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
