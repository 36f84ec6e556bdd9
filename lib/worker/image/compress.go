// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxDecompressedBytes caps the buffer a compressed frame may expand
// into, and the raw image buffer a header may claim.
const maxDecompressedBytes = 256 << 20

// decompressor unwraps transport compression around image data.
type decompressor struct {
	zstd *zstd.Decoder
}

func newDecompressor() (*decompressor, error) {
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxDecompressedBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder initialization: %w", err)
	}
	return &decompressor{zstd: decoder}, nil
}

// expand returns the uncompressed bytes of data. expectedSize is the
// buffer size the image header implies; lz4 block format needs it to
// size the destination. The size is checked before anything is
// allocated.
func (d *decompressor) expand(compression string, data []byte, expectedSize int) ([]byte, error) {
	switch strings.ToLower(compression) {
	case "", "none":
		return data, nil
	case "lz4":
		if expectedSize <= 0 || expectedSize > maxDecompressedBytes {
			return nil, fmt.Errorf("lz4 frame needs an image header sized between 1 and %d bytes", maxDecompressedBytes)
		}
		destination := make([]byte, expectedSize)
		read, err := lz4.UncompressBlock(data, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return destination[:read], nil
	case "zstd":
		result, err := d.zstd.DecodeAll(data, make([]byte, 0, min(max(expectedSize, 0), maxDecompressedBytes)))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported transport compression %q (want lz4 or zstd)", compression)
	}
}

func (d *decompressor) close() {
	d.zstd.Close()
}
