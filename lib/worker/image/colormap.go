// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"fmt"
	"math"
	"strings"
)

// ColorMap maps a normalised value in [0,1] to an RGB colour.
type ColorMap string

const (
	Grayscale ColorMap = "grayscale"
	Turbo     ColorMap = "turbo"
	Jet       ColorMap = "jet"
)

// ParseColorMap accepts a colour map name. "" is grayscale, "rainbow" is
// an alias for jet, and "gray"/"grey" for grayscale.
func ParseColorMap(name string) (ColorMap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "grayscale", "gray", "grey":
		return Grayscale, nil
	case "turbo":
		return Turbo, nil
	case "jet", "rainbow":
		return Jet, nil
	default:
		return "", fmt.Errorf("unknown color map %q (want grayscale, turbo, or jet)", name)
	}
}

// Apply returns the colour for value. Values outside [0,1] are clamped.
func (m ColorMap) Apply(value float64) (r, g, b uint8) {
	value = clamp01(value)
	switch m {
	case Turbo:
		return turbo(value)
	case Jet:
		return jet(value)
	default:
		gray := toByte(value)
		return gray, gray, gray
	}
}

// turbo evaluates the polynomial approximation of the Turbo colour map
// published by Mikhailov (Google, 2019).
func turbo(x float64) (uint8, uint8, uint8) {
	polynomial := func(c [6]float64) float64 {
		return c[0] + x*(c[1]+x*(c[2]+x*(c[3]+x*(c[4]+x*c[5]))))
	}
	red := polynomial([6]float64{0.13572138, 4.61539260, -42.66032258, 132.13108234, -152.94239396, 59.28637943})
	green := polynomial([6]float64{0.09140261, 2.19418839, 4.84296658, -14.18503333, 4.27729857, 2.82956604})
	blue := polynomial([6]float64{0.10667330, 12.64194608, -60.58204836, 110.36276771, -89.90310912, 27.34824973})
	return toByte(red), toByte(green), toByte(blue)
}

// jet is the classic piecewise-linear blue→cyan→yellow→red map.
func jet(x float64) (uint8, uint8, uint8) {
	channel := func(offset float64) float64 {
		return clamp01(1.5 - math.Abs(4*x-offset))
	}
	return toByte(channel(3)), toByte(channel(2)), toByte(channel(1))
}

func clamp01(value float64) float64 {
	switch {
	case math.IsNaN(value), value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}

func toByte(value float64) uint8 {
	return uint8(math.Round(clamp01(value) * 255))
}
