// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package worker runs per-panel-type processing off the caller's
// goroutine.
//
// A [Registry] owns at most one execution context per [panel.Type]: a
// goroutine with its own [Processor] and a bounded inbox. Panels of the
// same type share the context, so a dashboard with forty plots still
// runs one plot goroutine. The registry is an explicit object owned by
// the composition root; there is no package-level worker state.
//
// Contexts share no memory with their callers. [Registry.Send] encodes
// each command to CBOR before queueing it and the context decodes its
// own copy; responses take the same route back. A processor can keep
// references to anything it receives without racing the caller.
//
// Responses are demultiplexed by panel id. Only panels in the active
// set (see [Registry.AddPanel]) receive responses. A response for a
// panel that was removed while its command was in flight is dropped,
// so a late answer never resurrects state the caller already tore
// down. Callers treat "no response" as a no-op.
//
// Each context processes commands strictly in the order they were
// sent. The inbox is bounded: when it is full, the oldest queued
// PROCESS_MESSAGE is evicted to make room (telemetry is lossy,
// configuration is not). If the inbox holds only configuration
// commands, Send fails with [ErrQueueFull].
//
// A context that fails to start is reported once. The type then stays
// unavailable, and every call returns [ErrWorkerUnavailable], until the
// caller invokes [Registry.Retry].
package worker
