// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graphlayout

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the flow of ranks across the drawing.
type Direction string

const (
	TopToBottom Direction = "TB"
	BottomToTop Direction = "BT"
	LeftToRight Direction = "LR"
	RightToLeft Direction = "RL"
)

// ParseDirection accepts the two-letter codes in either case.
func ParseDirection(value string) (Direction, error) {
	switch direction := Direction(strings.ToUpper(value)); direction {
	case TopToBottom, BottomToTop, LeftToRight, RightToLeft:
		return direction, nil
	default:
		return "", fmt.Errorf("unknown layout direction %q (want TB, BT, LR, or RL)", value)
	}
}

// horizontal reports whether ranks advance along the x axis.
func (d Direction) horizontal() bool {
	return d == LeftToRight || d == RightToLeft
}

// Options parameterises [Layout]. Zero fields take the values from
// [DefaultOptions].
type Options struct {
	Direction  Direction `json:"direction" cbor:"direction" yaml:"direction"`
	NodeWidth  float64   `json:"node_width" cbor:"node_width" yaml:"node_width"`
	NodeHeight float64   `json:"node_height" cbor:"node_height" yaml:"node_height"`
	// NodeSep is the gap between neighbouring nodes in the same rank.
	NodeSep float64 `json:"node_sep" cbor:"node_sep" yaml:"node_sep"`
	// RankSep is the gap between consecutive ranks.
	RankSep float64 `json:"rank_sep" cbor:"rank_sep" yaml:"rank_sep"`
	MarginX float64 `json:"margin_x" cbor:"margin_x" yaml:"margin_x"`
	MarginY float64 `json:"margin_y" cbor:"margin_y" yaml:"margin_y"`
}

// DefaultOptions returns a top-to-bottom layout sized for frame labels.
func DefaultOptions() Options {
	return Options{
		Direction:  TopToBottom,
		NodeWidth:  172,
		NodeHeight: 36,
		NodeSep:    50,
		RankSep:    80,
		MarginX:    20,
		MarginY:    20,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Direction == "" {
		o.Direction = defaults.Direction
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = defaults.NodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = defaults.NodeHeight
	}
	if o.NodeSep == 0 {
		o.NodeSep = defaults.NodeSep
	}
	if o.RankSep == 0 {
		o.RankSep = defaults.RankSep
	}
	if o.MarginX == 0 {
		o.MarginX = defaults.MarginX
	}
	if o.MarginY == 0 {
		o.MarginY = defaults.MarginY
	}
	return o
}

// Validate rejects directions and sizes the layout cannot honour.
func (o Options) Validate() error {
	var errs []error
	if o.Direction != "" {
		if _, err := ParseDirection(string(o.Direction)); err != nil {
			errs = append(errs, err)
		}
	}
	if o.NodeWidth < 0 || o.NodeHeight < 0 {
		errs = append(errs, fmt.Errorf("node size must not be negative (%vx%v)", o.NodeWidth, o.NodeHeight))
	}
	if o.NodeSep < 0 || o.RankSep < 0 {
		errs = append(errs, fmt.Errorf("separations must not be negative (node %v, rank %v)", o.NodeSep, o.RankSep))
	}
	if o.MarginX < 0 || o.MarginY < 0 {
		errs = append(errs, fmt.Errorf("margins must not be negative (%v, %v)", o.MarginX, o.MarginY))
	}
	return errors.Join(errs...)
}
