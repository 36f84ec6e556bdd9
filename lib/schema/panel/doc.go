// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package panel defines the protocol between the dashboard and its
// panel worker contexts, and the render-ready payloads those workers
// produce.
//
// Commands and responses are tagged unions discriminated by Type. Both
// carry the owning panel id so the worker manager can route a response
// back to the panel that caused it. The payload is an opaque CBOR value
// ([codec.RawMessage]): the manager moves envelopes without decoding
// them, and only the processor for the panel type knows the payload
// shape for each command.
//
// Telemetry reaches panels as a [Message], a tagged variant over the
// message kinds the core understands (structured JSON, raw images) plus
// an explicit [KindUnrecognized] for payloads with no known shape.
// Unrecognized messages are only ever routed to raw-topic panels.
package panel
