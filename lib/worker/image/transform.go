// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import "fmt"

// transform rotates the bitmap clockwise by rotation degrees, then
// applies the flips.
func transform(bitmap Bitmap, rotation int, flipHorizontal, flipVertical bool) (Bitmap, error) {
	rotation = ((rotation % 360) + 360) % 360
	if rotation%90 != 0 {
		return Bitmap{}, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", rotation)
	}
	if rotation == 0 && !flipHorizontal && !flipVertical {
		return bitmap, nil
	}

	width, height := bitmap.Width, bitmap.Height
	outWidth, outHeight := width, height
	if rotation == 90 || rotation == 270 {
		outWidth, outHeight = height, width
	}
	out := Bitmap{Width: outWidth, Height: outHeight, Pixels: make([]byte, len(bitmap.Pixels))}

	for y := range height {
		for x := range width {
			var targetX, targetY int
			switch rotation {
			case 90:
				targetX, targetY = height-1-y, x
			case 180:
				targetX, targetY = width-1-x, height-1-y
			case 270:
				targetX, targetY = y, width-1-x
			default:
				targetX, targetY = x, y
			}
			if flipHorizontal {
				targetX = outWidth - 1 - targetX
			}
			if flipVertical {
				targetY = outHeight - 1 - targetY
			}
			source := (y*width + x) * 4
			target := (targetY*outWidth + targetX) * 4
			copy(out.Pixels[target:target+4], bitmap.Pixels[source:source+4])
		}
	}
	return out, nil
}
