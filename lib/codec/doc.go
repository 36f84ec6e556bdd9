// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by every
// robodash package.
//
// robodash uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: CLI output, scenario files, and the
//     structured telemetry payloads forwarded from the middleware bridge.
//   - CBOR for internal protocols: the command/response envelopes that
//     cross into panel worker contexts and the structural fingerprints
//     used as layout cache keys.
//
// Worker contexts share no memory with the dashboard. Every command is
// marshaled on send and unmarshaled inside the worker, and every
// response travels back the same way, so a panel processor can never
// alias a buffer owned by the caller.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical value always produces identical bytes, which is what
// makes the layout cache key stable across runs. Timestamps are encoded
// as RFC 3339 text with nanoseconds so message times survive the trip
// into a worker without losing precision.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type only ever crosses the worker boundary.
//   - `json` tag: the type is also printed by the CLI or read from
//     scenario files. fxamacker/cbor falls back to `json` tags when no
//     `cbor` tag is present, so one tag controls both formats.
//
// Never put both tags on the same field.
package codec
