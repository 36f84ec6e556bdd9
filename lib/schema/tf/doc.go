// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tf defines the coordinate-frame transform shapes consumed by
// the frame graph engine.
//
// A [TransformRecord] is one parent→child rigid transform observed at a
// point in time. Records arrive either directly from the collaborator
// that owns the middleware bridge connection, or as tf2 TFMessage JSON
// payloads on the /tf and /tf_static topics, which [ParseTFMessage]
// converts into records.
package tf
