// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"fmt"
	"time"
)

// Freshness classifies how recently a frame or edge was updated.
type Freshness int

const (
	Fresh Freshness = iota
	Recent
	Stale
	VeryOld
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "Fresh"
	case Recent:
		return "Recent"
	case Stale:
		return "Stale"
	case VeryOld:
		return "Very Old"
	default:
		return fmt.Sprintf("Freshness(%d)", int(f))
	}
}

// Color returns the hex colour renderers use for the band.
func (f Freshness) Color() string {
	switch f {
	case Fresh:
		return "#22c55e"
	case Recent:
		return "#eab308"
	case Stale:
		return "#f97316"
	default:
		return "#ef4444"
	}
}

// Thresholds are the upper bounds (exclusive) of each freshness band.
// Animate is the age below which an edge is drawn animated.
type Thresholds struct {
	Fresh   time.Duration `yaml:"fresh"`
	Recent  time.Duration `yaml:"recent"`
	Stale   time.Duration `yaml:"stale"`
	Animate time.Duration `yaml:"animate"`
}

// DefaultThresholds returns the standard 1s/5s/10s bands with a 500ms
// animation window.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Fresh:   1000 * time.Millisecond,
		Recent:  5000 * time.Millisecond,
		Stale:   10000 * time.Millisecond,
		Animate: 500 * time.Millisecond,
	}
}

// Validate checks that the bands are positive and increasing.
func (t Thresholds) Validate() error {
	if t.Fresh <= 0 || t.Animate < 0 {
		return fmt.Errorf("freshness thresholds must be positive (fresh %v, animate %v)", t.Fresh, t.Animate)
	}
	if t.Recent <= t.Fresh || t.Stale <= t.Recent {
		return fmt.Errorf("freshness thresholds must increase: fresh %v < recent %v < stale %v", t.Fresh, t.Recent, t.Stale)
	}
	return nil
}

// Classify maps an age onto a band. Negative ages (clock skew between
// the robot and the dashboard) count as Fresh.
func (t Thresholds) Classify(age time.Duration) Freshness {
	switch {
	case age < t.Fresh:
		return Fresh
	case age < t.Recent:
		return Recent
	case age < t.Stale:
		return Stale
	default:
		return VeryOld
	}
}

// Animated reports whether an edge of the given age should animate.
func (t Thresholds) Animated(age time.Duration) bool {
	return age < t.Animate
}

// Classify maps an age onto a band using [DefaultThresholds].
func Classify(age time.Duration) Freshness {
	return DefaultThresholds().Classify(age)
}
