// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tfview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/robodash/lib/framegraph"
	"github.com/bureau-foundation/robodash/lib/graphlayout"
	"github.com/bureau-foundation/robodash/lib/schema/tf"
)

// DefaultRefreshInterval is how often the view re-reads its snapshot.
const DefaultRefreshInterval = 250 * time.Millisecond

// refreshMsg carries a freshly read snapshot.
type refreshMsg struct {
	snapshot Snapshot
}

// tickMsg triggers the next periodic refresh.
type tickMsg time.Time

// Model is the bubbletea model for a live frame tree.
type Model struct {
	source   SnapshotFunc
	interval time.Duration
	keys     KeyMap
	theme    Theme
	render   *Renderer

	snapshot Snapshot
	all      []Row
	rows     []Row

	filterActive bool
	filterInput  string
	fuzzy        bool

	cursor int
	offset int
	width  int
	height int
}

// ModelOptions configures [NewModel]. Zero values select defaults.
type ModelOptions struct {
	Interval time.Duration
	Keys     *KeyMap
	Theme    *Theme
	Renderer *lipgloss.Renderer
}

// NewModel creates a model reading from source. The first snapshot is
// taken immediately so the initial View is not empty.
func NewModel(source SnapshotFunc, options ModelOptions) Model {
	interval := options.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	model := Model{
		source:   source,
		interval: interval,
		keys:     keys,
		theme:    theme,
		render:   NewRenderer(theme, options.Renderer),
	}
	model.apply(source())
	return model
}

// Init implements tea.Model. Starts the refresh timer.
func (model Model) Init() tea.Cmd {
	return model.tick()
}

func (model Model) tick() tea.Cmd {
	return tea.Tick(model.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (model Model) refresh() tea.Cmd {
	source := model.source
	return func() tea.Msg {
		return refreshMsg{snapshot: source()}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if model.filterActive {
			return model.handleFilterKeys(message)
		}
		return model.handleKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ensureCursorVisible()

	case tickMsg:
		return model, tea.Batch(model.refresh(), model.tick())

	case refreshMsg:
		model.apply(message.snapshot)
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)
	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(-model.visibleHeight())
	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(model.visibleHeight())
	case key.Matches(message, model.keys.Home):
		model.moveCursor(-len(model.rows))
	case key.Matches(message, model.keys.End):
		model.moveCursor(len(model.rows))
	case key.Matches(message, model.keys.FilterActivate):
		model.filterActive = true
	case key.Matches(message, model.keys.FilterClear):
		model.filterInput = ""
		model.applyFilter()
	case key.Matches(message, model.keys.FuzzyToggle):
		model.fuzzy = !model.fuzzy
		model.applyFilter()
	case key.Matches(message, model.keys.Refresh):
		return model, model.refresh()
	}
	return model, nil
}

// handleFilterKeys processes keystrokes when the filter input has focus.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		// Esc: if there's filter text, clear it; if already empty, exit filter mode.
		if model.filterInput != "" {
			model.filterInput = ""
			model.applyFilter()
		} else {
			model.filterActive = false
		}

	case key.Matches(message, model.keys.FuzzyToggle):
		model.fuzzy = !model.fuzzy
		model.applyFilter()

	case message.Type == tea.KeyEnter:
		model.filterActive = false

	case message.Type == tea.KeyBackspace:
		if runes := []rune(model.filterInput); len(runes) > 0 {
			model.filterInput = string(runes[:len(runes)-1])
			model.applyFilter()
		}

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		if message.Type == tea.KeySpace {
			model.filterInput += " "
		}
		model.filterInput += string(message.Runes)
		model.applyFilter()
	}
	return model, nil
}

// apply installs a new snapshot, keeping the cursor on the same frame
// when it still exists.
func (model *Model) apply(snapshot Snapshot) {
	selected := model.Selected()
	model.snapshot = snapshot
	model.all = Rows(snapshot)
	model.applyFilter()
	if selected == "" {
		return
	}
	for i, row := range model.rows {
		if row.Frame == selected {
			model.cursor = i
			model.ensureCursorVisible()
			return
		}
	}
}

func (model *Model) applyFilter() {
	matcher := graphlayout.NewMatcher(model.filterInput, graphlayout.SearchOptions{Fuzzy: model.fuzzy})
	if matcher.Empty() {
		model.rows = model.all
	} else {
		model.rows = FilterRows(model.all, model.snapshot.Tree, func(frame tf.FrameID) bool {
			return matcher.Match(string(frame))
		})
	}
	model.cursor = min(model.cursor, max(len(model.rows)-1, 0))
	model.ensureCursorVisible()
}

func (model *Model) moveCursor(delta int) {
	model.cursor = min(max(model.cursor+delta, 0), max(len(model.rows)-1, 0))
	model.ensureCursorVisible()
}

func (model *Model) ensureCursorVisible() {
	height := model.visibleHeight()
	if model.cursor < model.offset {
		model.offset = model.cursor
	}
	if model.cursor >= model.offset+height {
		model.offset = model.cursor - height + 1
	}
	model.offset = max(model.offset, 0)
}

// visibleHeight is the number of tree rows that fit between the header
// and the two footer lines.
func (model Model) visibleHeight() int {
	if model.height <= 0 {
		return max(len(model.rows), 1)
	}
	return max(model.height-3, 1)
}

// Selected returns the frame under the cursor, or "" when no rows are
// shown.
func (model Model) Selected() tf.FrameID {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return ""
	}
	return model.rows[model.cursor].Frame
}

// Rows returns the rows currently shown.
func (model Model) Rows() []Row { return model.rows }

// View implements tea.Model.
func (model Model) View() string {
	var builder strings.Builder
	builder.WriteString(model.renderHeader())
	builder.WriteByte('\n')

	end := min(model.offset+model.visibleHeight(), len(model.rows))
	if len(model.rows) == 0 {
		builder.WriteString(model.render.Tree(nil, model.width))
		builder.WriteByte('\n')
	}
	for i := model.offset; i < end; i++ {
		builder.WriteString(model.render.Line(model.rows[i], model.width, i == model.cursor))
		builder.WriteByte('\n')
	}

	builder.WriteString(model.renderPath())
	builder.WriteByte('\n')
	builder.WriteString(model.renderHelp())
	return builder.String()
}

func (model Model) renderHeader() string {
	tree := model.snapshot.Tree
	style := model.render.renderer.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	header := fmt.Sprintf("%d frames  %d roots", len(tree.Nodes), len(tree.Roots))
	if len(tree.SyntheticRoots) > 0 {
		header += fmt.Sprintf("  %d synthetic", len(tree.SyntheticRoots))
	}
	if tree.HasCycles {
		header += "  cycles detected"
	}
	if model.filterActive || model.filterInput != "" {
		mode := "exact"
		if model.fuzzy {
			mode = "fuzzy"
		}
		filterStyle := model.render.renderer.NewStyle().Foreground(model.theme.FilterMatch)
		return style.Render(header) + "  " + filterStyle.Render(fmt.Sprintf("/%s (%s, %d shown)", model.filterInput, mode, len(model.rows)))
	}
	return style.Render(header)
}

// renderPath shows the selected frame's chain up to its root.
func (model Model) renderPath() string {
	style := model.render.renderer.NewStyle().Foreground(model.theme.FaintText)
	selected := model.Selected()
	if selected == "" {
		return style.Render("")
	}
	path := framegraph.RootPath(model.snapshot.Tree.Nodes, selected)
	names := make([]string, len(path))
	for i, frame := range path {
		names[i] = string(frame)
	}
	return style.Render(strings.Join(names, " → "))
}

func (model Model) renderHelp() string {
	style := model.render.renderer.NewStyle().Foreground(model.theme.HelpText)
	mode := "TREE"
	if model.filterActive {
		mode = "FILTER"
	}
	return style.Render(fmt.Sprintf(" [%s] q quit  ↑↓ navigate  / filter  C-f fuzzy  r refresh", mode))
}
