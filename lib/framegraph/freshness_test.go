// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framegraph

import (
	"testing"
	"time"
)

func TestClassifyBands(t *testing.T) {
	t.Parallel()
	cases := []struct {
		age  time.Duration
		want string
	}{
		{500 * time.Millisecond, "Fresh"},
		{3000 * time.Millisecond, "Recent"},
		{8000 * time.Millisecond, "Stale"},
		{15000 * time.Millisecond, "Very Old"},
		{999 * time.Millisecond, "Fresh"},
		{1000 * time.Millisecond, "Recent"},
		{5000 * time.Millisecond, "Stale"},
		{10000 * time.Millisecond, "Very Old"},
		{-time.Second, "Fresh"},
	}
	for _, tc := range cases {
		if got := Classify(tc.age).String(); got != tc.want {
			t.Errorf("Classify(%v): got %q, want %q", tc.age, got, tc.want)
		}
	}
}

func TestFreshnessColors(t *testing.T) {
	t.Parallel()
	colors := map[Freshness]string{Fresh: "#22c55e", Recent: "#eab308", Stale: "#f97316", VeryOld: "#ef4444"}
	for band, want := range colors {
		if got := band.Color(); got != want {
			t.Errorf("%s color: got %s, want %s", band, got, want)
		}
	}
}

func TestThresholdsAnimated(t *testing.T) {
	t.Parallel()
	thresholds := DefaultThresholds()
	if !thresholds.Animated(499 * time.Millisecond) {
		t.Error("499ms: want animated")
	}
	if thresholds.Animated(500 * time.Millisecond) {
		t.Error("500ms: want not animated")
	}
}

func TestThresholdsValidate(t *testing.T) {
	t.Parallel()
	if err := DefaultThresholds().Validate(); err != nil {
		t.Errorf("defaults: %v", err)
	}
	bad := DefaultThresholds()
	bad.Recent = bad.Fresh
	if err := bad.Validate(); err == nil {
		t.Error("non-increasing bands: expected error")
	}
}
