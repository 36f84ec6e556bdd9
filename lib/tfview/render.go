// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tfview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Renderer styles rows with a theme. Styles are created from a
// lipgloss renderer so callers control the color profile (for example
// a renderer forced to termenv.Ascii for --no-color output).
type Renderer struct {
	theme    Theme
	renderer *lipgloss.Renderer
}

// NewRenderer returns a Renderer. A nil lipgloss renderer uses the
// default one for stdout.
func NewRenderer(theme Theme, renderer *lipgloss.Renderer) *Renderer {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	return &Renderer{theme: theme, renderer: renderer}
}

// Tree renders every row, one per line. Lines wider than width are
// truncated; width <= 0 disables truncation.
func (r *Renderer) Tree(rows []Row, width int) string {
	if len(rows) == 0 {
		return r.renderer.NewStyle().Foreground(r.theme.FaintText).Render("(no frames)")
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = r.Line(row, width, false)
	}
	return strings.Join(lines, "\n")
}

// Line renders one row.
func (r *Renderer) Line(row Row, width int, selected bool) string {
	prefixStyle := r.renderer.NewStyle().Foreground(r.theme.BorderColor)
	nameStyle := r.renderer.NewStyle().Foreground(r.theme.NormalText)
	switch {
	case row.Synthetic:
		nameStyle = nameStyle.Foreground(r.theme.SyntheticRoot).Bold(true)
	case row.IsRoot:
		nameStyle = nameStyle.Foreground(r.theme.Root).Bold(true)
	}
	if selected {
		nameStyle = nameStyle.
			Foreground(r.theme.SelectedForeground).
			Background(r.theme.SelectedBackground)
	}

	line := prefixStyle.Render(row.Prefix) + nameStyle.Render(string(row.Frame))
	if badge := r.badge(row); badge != "" {
		line += "  " + badge
	}
	if width > 0 && ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func (r *Renderer) badge(row Row) string {
	faint := r.renderer.NewStyle().Foreground(r.theme.FaintText)
	switch {
	case row.Synthetic:
		return faint.Render("synthetic root")
	case row.IsRoot:
		return faint.Render("root")
	case !row.HasEdge:
		return ""
	}

	distance := faint.Render(fmt.Sprintf("%.2fm", row.Distance))
	if row.Static {
		static := r.renderer.NewStyle().Foreground(r.theme.StaticEdge)
		return static.Render("■ static") + " " + distance
	}
	band := r.renderer.NewStyle().Foreground(r.theme.FreshnessColor(row.Freshness))
	return band.Render("● "+row.Freshness.String()) + " " +
		faint.Render(FormatAge(row.Age)) + " " + distance
}

// FormatAge renders an edge age compactly: milliseconds below a
// second, tenths of a second below a minute, minutes and seconds
// beyond.
func FormatAge(age time.Duration) string {
	switch {
	case age < time.Second:
		return fmt.Sprintf("%dms", age.Milliseconds())
	case age < time.Minute:
		return fmt.Sprintf("%.1fs", age.Seconds())
	default:
		minutes := int(age / time.Minute)
		seconds := int((age % time.Minute) / time.Second)
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
}
