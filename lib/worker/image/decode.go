// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bureau-foundation/robodash/lib/schema/panel"
)

// ErrCompressedImage rejects encoded image formats.
var ErrCompressedImage = errors.New("compressed image formats are decoded by the renderer, not the image worker")

// Settings are the per-panel rendering parameters.
type Settings struct {
	ColorMap       ColorMap
	Min, Max       *float64
	Rotation       int
	FlipHorizontal bool
	FlipVertical   bool
}

// Bitmap is a decoded RGBA8 image.
type Bitmap struct {
	Width, Height int
	Pixels        []byte
}

// layout describes how an encoding stores one pixel.
type layout struct {
	channels      int
	bytesPerValue int
	// order maps output R, G, B, A to source channel indexes; -1 means
	// opaque alpha.
	order [4]int
	float bool
}

var layouts = map[string]layout{
	"rgb8":   {channels: 3, bytesPerValue: 1, order: [4]int{0, 1, 2, -1}},
	"rgba8":  {channels: 4, bytesPerValue: 1, order: [4]int{0, 1, 2, 3}},
	"bgr8":   {channels: 3, bytesPerValue: 1, order: [4]int{2, 1, 0, -1}},
	"8uc3":   {channels: 3, bytesPerValue: 1, order: [4]int{2, 1, 0, -1}},
	"bgra8":  {channels: 4, bytesPerValue: 1, order: [4]int{2, 1, 0, 3}},
	"8uc4":   {channels: 4, bytesPerValue: 1, order: [4]int{2, 1, 0, 3}},
	"mono8":  {channels: 1, bytesPerValue: 1},
	"8uc1":   {channels: 1, bytesPerValue: 1},
	"mono16": {channels: 1, bytesPerValue: 2},
	"16uc1":  {channels: 1, bytesPerValue: 2},
	"32fc1":  {channels: 1, bytesPerValue: 4, float: true},
}

// maxPixels bounds the decoded bitmap: 128 MiB of RGBA output.
const maxPixels = 1 << 25

var encodedFormats = []string{"jpeg", "jpg", "png", "webp", "compressed"}

// Decode converts a raw image into an RGBA8 bitmap with settings
// applied. The image data must already be free of transport
// compression.
func Decode(raw panel.RawImage, data []byte, settings Settings) (Bitmap, error) {
	encoding := strings.ToLower(strings.TrimSpace(raw.Encoding))
	for _, format := range encodedFormats {
		if strings.Contains(encoding, format) {
			return Bitmap{}, fmt.Errorf("%w: %s", ErrCompressedImage, raw.Encoding)
		}
	}
	pixel, ok := layouts[encoding]
	if !ok {
		return Bitmap{}, fmt.Errorf("unsupported image encoding %q", raw.Encoding)
	}

	width, height := int(raw.Width), int(raw.Height)
	if width == 0 || height == 0 {
		return Bitmap{}, fmt.Errorf("image has no pixels (%dx%d)", width, height)
	}
	if _, ok := checkedProduct(maxPixels, int64(width), int64(height)); !ok {
		return Bitmap{}, fmt.Errorf("image of %dx%d exceeds %d pixels", width, height, maxPixels)
	}
	rowBytes := width * pixel.channels * pixel.bytesPerValue
	step := int(raw.Step)
	if step == 0 {
		step = rowBytes
	}
	if step < rowBytes {
		return Bitmap{}, fmt.Errorf("step %d is shorter than a %s row of %d pixels (%d bytes)", step, raw.Encoding, width, rowBytes)
	}
	rows, ok := checkedProduct(maxDecompressedBytes, int64(step), int64(height-1))
	if !ok || rows+int64(rowBytes) > maxDecompressedBytes {
		return Bitmap{}, fmt.Errorf("%dx%d %s with step %d exceeds %d bytes", width, height, raw.Encoding, step, maxDecompressedBytes)
	}
	if need := int(rows) + rowBytes; len(data) < need {
		return Bitmap{}, fmt.Errorf("image data is %d bytes, %dx%d %s needs %d", len(data), width, height, raw.Encoding, need)
	}

	pixels := make([]byte, width*height*4)
	if pixel.channels == 1 {
		decodeSingleChannel(pixels, data, width, height, step, pixel, raw.IsBigEndian, settings)
	} else {
		decodeColor(pixels, data, width, height, step, pixel)
	}

	bitmap := Bitmap{Width: width, Height: height, Pixels: pixels}
	return transform(bitmap, settings.Rotation, settings.FlipHorizontal, settings.FlipVertical)
}

func decodeColor(pixels, data []byte, width, height, step int, pixel layout) {
	for y := range height {
		row := data[y*step:]
		for x := range width {
			source := row[x*pixel.channels:]
			target := pixels[(y*width+x)*4:]
			for channel, index := range pixel.order {
				if index < 0 {
					target[channel] = 255
				} else {
					target[channel] = source[index]
				}
			}
		}
	}
}

func decodeSingleChannel(pixels, data []byte, width, height, step int, pixel layout, bigEndian bool, settings Settings) {
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	values := make([]float64, width*height)
	for y := range height {
		row := data[y*step:]
		for x := range width {
			offset := x * pixel.bytesPerValue
			var value float64
			switch {
			case pixel.float:
				value = float64(math.Float32frombits(order.Uint32(row[offset:])))
			case pixel.bytesPerValue == 2:
				value = float64(order.Uint16(row[offset:]))
			default:
				value = float64(row[offset])
			}
			values[y*width+x] = value
		}
	}

	low, high := valueRange(values, pixel, settings)
	span := high - low
	for i, value := range values {
		target := pixels[i*4:]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		normalised := 0.0
		if span > 0 {
			normalised = (value - low) / span
		}
		target[0], target[1], target[2] = settings.ColorMap.Apply(normalised)
		target[3] = 255
	}
}

// valueRange returns the normalisation bounds. Configured bounds win;
// 8-bit grayscale without configured bounds passes through unscaled;
// anything else uses the finite min and max of the frame.
func valueRange(values []float64, pixel layout, settings Settings) (float64, float64) {
	var low, high float64
	switch {
	case pixel.bytesPerValue == 1 && !pixel.float:
		low, high = 0, 255
	default:
		low, high = math.Inf(1), math.Inf(-1)
		for _, value := range values {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			low = min(low, value)
			high = max(high, value)
		}
		if math.IsInf(low, 1) {
			low, high = 0, 1
		}
	}
	if settings.Min != nil {
		low = *settings.Min
	}
	if settings.Max != nil {
		high = *settings.Max
	}
	return low, high
}

// expectedSize returns the number of bytes an uncompressed buffer for
// raw should hold, 0 when the encoding is unknown, or -1 when the
// header claims more than maxDecompressedBytes.
func expectedSize(raw panel.RawImage) int {
	var (
		size int64
		ok   bool
	)
	if raw.Step > 0 {
		size, ok = checkedProduct(maxDecompressedBytes, int64(raw.Step), int64(raw.Height))
	} else {
		pixel, known := layouts[strings.ToLower(strings.TrimSpace(raw.Encoding))]
		if !known {
			return 0
		}
		size, ok = checkedProduct(maxDecompressedBytes,
			int64(raw.Width), int64(raw.Height), int64(pixel.channels), int64(pixel.bytesPerValue))
	}
	if !ok {
		return -1
	}
	return int(size)
}

// checkedProduct multiplies non-negative factors, reporting false as
// soon as the running product would exceed limit.
func checkedProduct(limit int64, factors ...int64) (int64, bool) {
	product := int64(1)
	for _, factor := range factors {
		if factor < 0 {
			return 0, false
		}
		if factor != 0 && product > limit/factor {
			return 0, false
		}
		product *= factor
	}
	return product, true
}
