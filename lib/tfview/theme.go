// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tfview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/robodash/lib/framegraph"
)

// Theme defines the color palette for frame tree views.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Freshness band colors, indexed by framegraph.Freshness.
	Freshness [4]lipgloss.Color

	// Static transforms never age.
	StaticEdge lipgloss.Color

	// Root markers.
	Root          lipgloss.Color
	SyntheticRoot lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	FilterMatch      lipgloss.Color
}

// FreshnessColor returns the color for a band. Out-of-range values
// return FaintText.
func (theme Theme) FreshnessColor(band framegraph.Freshness) lipgloss.Color {
	if band < 0 || int(band) >= len(theme.Freshness) {
		return theme.FaintText
	}
	return theme.Freshness[band]
}

// DefaultTheme is the built-in dark-terminal color scheme. Freshness
// colors are the hex values framegraph assigns to each band.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	Freshness: [4]lipgloss.Color{
		lipgloss.Color(framegraph.Fresh.Color()),
		lipgloss.Color(framegraph.Recent.Color()),
		lipgloss.Color(framegraph.Stale.Color()),
		lipgloss.Color(framegraph.VeryOld.Color()),
	},
	StaticEdge: lipgloss.Color("75"), // blue

	Root:          lipgloss.Color("255"),
	SyntheticRoot: lipgloss.Color("141"), // light purple

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	FilterMatch:      lipgloss.Color("220"), // amber
}
