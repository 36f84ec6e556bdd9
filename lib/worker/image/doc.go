// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package image decodes raw sensor images for image panels.
//
// Input is an uncompressed row-major pixel buffer in one of the common
// robot encodings (rgb8, rgba8, bgr8, bgra8, 8UC3, mono8/8UC1,
// mono16/16UC1, 32FC1). Output is always a tightly packed RGBA8 bitmap.
// Single-channel data is normalised into [0,1], either over the range
// the panel configures or over the frame's own finite min and max, and
// then coloured with a [ColorMap]. Non-finite depth values come out
// transparent.
//
// The buffer may be wrapped in transport compression (lz4 block or
// zstd); that is unwrapped first. Encoded image formats (jpeg, png,
// webp, "compressed") are rejected with [ErrCompressedImage]: decoding
// them belongs to the renderer, not to a background worker.
//
// Rotation (0, 90, 180, 270 degrees clockwise) and horizontal/vertical
// flips are applied after colour mapping. The last frame of each panel
// is kept so REPROCESS can redraw it after a settings change without
// waiting for new telemetry.
package image
