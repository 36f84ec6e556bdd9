// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tf

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// FrameID names a coordinate frame ("map", "odom", "base_link").
type FrameID string

// Vec3 is a translation in meters.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean length of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Quaternion is a rotation in x, y, z, w order.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity returns the no-rotation quaternion.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// TransformRecord is a timestamped parent→child rigid transform.
type TransformRecord struct {
	Parent      FrameID    `json:"parent"`
	Child       FrameID    `json:"child"`
	Translation Vec3       `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
	IsStatic    bool       `json:"is_static,omitempty"`
	ObservedAt  time.Time  `json:"observed_at"`
}

// ErrSelfTransform reports a record whose parent and child are the same
// frame.
var ErrSelfTransform = errors.New("transform parent and child are the same frame")

// EdgeKey returns the "parent->child" key used by freshness maps.
func EdgeKey(parent, child FrameID) string {
	return string(parent) + "->" + string(child)
}

// EdgeKey returns the freshness key for this record's edge.
func (record TransformRecord) EdgeKey() string {
	return EdgeKey(record.Parent, record.Child)
}

// Validate checks the structural invariants of a record: both frames
// are named and distinct.
func (record TransformRecord) Validate() error {
	if record.Parent == "" {
		return fmt.Errorf("transform to %q has no parent frame", record.Child)
	}
	if record.Child == "" {
		return fmt.Errorf("transform from %q has no child frame", record.Parent)
	}
	if record.Parent == record.Child {
		return fmt.Errorf("%w: %q", ErrSelfTransform, record.Parent)
	}
	return nil
}
