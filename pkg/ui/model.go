// Package ui is the terminal front end: one column per semester, where moving
// the cursor hovers a subject and the board repaints from the style batches
// the GraphView produces.
package ui

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/export"
	"github.com/vanderheijden86/pensum/pkg/layout"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/view"
)

const (
	defaultWidth       = 100
	defaultHeight      = 30
	defaultColumnWidth = 28
	minColumnWidth     = 12
)

// Options configures the board.
type Options struct {
	View        view.Config
	ColumnWidth int
	// InitialSubject is hovered on start when it exists.
	InitialSubject string
	// GlamourStyle forces a glamour standard style ("dark", "light",
	// "notty"); empty selects one from the terminal background.
	GlamourStyle string
	// Reloads delivers curriculum reloads, usually fed by the file watcher.
	Reloads <-chan ReloadMsg
}

// ReloadMsg carries a re-parsed curriculum or the error that prevented it.
type ReloadMsg struct {
	Curriculum *model.Curriculum
	Err        error
}

// Model is the bubbletea model of the semester board.
type Model struct {
	curriculum *model.Curriculum
	view       *view.GraphView
	renderer   *Renderer
	warnings   []layout.Warning
	opts       Options

	theme Theme
	keys  keyMap
	help  help.Model

	columns [][]string
	col     int
	row     int
	offset  int

	showDetail bool
	detail     viewport.Model
	md         *glamour.TermRenderer

	width, height int
	colWidth      int

	statusMsg     string
	statusIsError bool
	copy          func(string) error
}

// NewModel builds the board for c.
func NewModel(c *model.Curriculum, opts Options) Model {
	colWidth := opts.ColumnWidth
	if colWidth <= 0 {
		colWidth = defaultColumnWidth
	}
	colWidth = max(colWidth, minColumnWidth)

	cfg := opts.View
	if cfg.Palette.NodeText == "" {
		cfg = view.DefaultConfig()
		opts.View = cfg
	}

	m := Model{
		opts:     opts,
		theme:    DefaultTheme(lipgloss.NewRenderer(os.Stdout), cfg.Palette),
		keys:     defaultKeyMap(),
		help:     help.New(),
		detail:   viewport.New(defaultWidth-4, defaultHeight-6),
		width:    defaultWidth,
		height:   defaultHeight,
		colWidth: colWidth,
		copy:     clipboard.WriteAll,
	}
	m.md = newMarkdownRenderer(opts.GlamourStyle, defaultWidth-8)
	m.load(c)
	if opts.InitialSubject != "" {
		m.focus(opts.InitialSubject)
	}
	return m
}

func newMarkdownRenderer(style string, width int) *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		debug.Log("ui: markdown renderer: %v", err)
		return nil
	}
	return r
}

// load swaps in a new curriculum, keeping the hovered subject when it
// still exists.
func (m *Model) load(c *model.Curriculum) {
	prev := ""
	if m.view != nil {
		prev = m.view.Hovered()
	}

	v, warnings := view.New(c, m.opts.View)
	r := NewRenderer()
	if err := v.Mount(r); err != nil {
		debug.Log("ui: mount: %v", err)
	}
	m.curriculum = c
	m.view = v
	m.renderer = r
	m.warnings = warnings

	m.columns = m.columns[:0]
	for _, sem := range v.Layout().Semesters {
		m.columns = append(m.columns, append([]string(nil), sem.Subjects...))
	}
	m.col, m.row, m.offset = 0, 0, 0
	if prev != "" && !m.focus(prev) {
		m.showDetail = false
	}
}

// focus moves the cursor to id and hovers it.
func (m *Model) focus(id string) bool {
	for ci, col := range m.columns {
		for ri, sid := range col {
			if sid == id {
				m.col, m.row = ci, ri
				m.hover()
				return true
			}
		}
	}
	return false
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForReload(m.opts.Reloads)
}

func waitForReload(ch <-chan ReloadMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.detail.Width = max(msg.Width-4, 20)
		m.detail.Height = max(m.bodyHeight()-2, 3)
		m.md = newMarkdownRenderer(m.opts.GlamourStyle, max(m.detail.Width-4, 20))
		if m.showDetail {
			m.refreshDetail()
		}
		return m, nil

	case ReloadMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
		} else if msg.Curriculum != nil {
			m.load(msg.Curriculum)
			if m.showDetail {
				m.refreshDetail()
			}
			m.setStatus(fmt.Sprintf("Reloaded %d subjects", len(msg.Curriculum.Subjects)), false)
		}
		return m, waitForReload(m.opts.Reloads)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showDetail {
		switch {
		case key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Blur):
			m.showDetail = false
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			m.copyHovered()
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.move(1, 0)
	case key.Matches(msg, m.keys.Blur):
		m.renderer.Emit(view.Event{Type: view.EventBlurNode})
	case key.Matches(msg, m.keys.Detail):
		if m.view.Hovered() == "" {
			m.hover()
		}
		if m.view.Hovered() != "" {
			m.showDetail = true
			m.refreshDetail()
		}
	case key.Matches(msg, m.keys.Copy):
		m.copyHovered()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// move shifts the cursor and hovers the subject under it. The first move
// after a blur re-hovers the current cell without moving.
func (m *Model) move(dc, dr int) {
	if m.view.Hovered() == "" {
		if m.col < 0 || m.col >= len(m.columns) || len(m.columns[m.col]) == 0 {
			c := m.nextNonEmpty(0, 1)
			if c < 0 {
				return
			}
			m.col, m.row = c, 0
		}
		m.row = clamp(m.row, 0, len(m.columns[m.col])-1)
		m.hover()
		return
	}

	if dc != 0 {
		next := m.nextNonEmpty(m.col+dc, dc)
		if next < 0 {
			return
		}
		m.col = next
		m.row = min(m.row, len(m.columns[m.col])-1)
	}
	if dr != 0 {
		m.row = clamp(m.row+dr, 0, len(m.columns[m.col])-1)
	}
	m.hover()
}

// nextNonEmpty returns the first column from start in direction dir that has
// subjects, or -1.
func (m *Model) nextNonEmpty(start, dir int) int {
	for c := start; c >= 0 && c < len(m.columns); c += dir {
		if len(m.columns[c]) > 0 {
			return c
		}
	}
	return -1
}

func (m *Model) hover() {
	id := m.cursorID()
	if id == "" {
		return
	}
	m.renderer.Emit(view.Event{Type: view.EventHoverNode, Node: id})
	m.scrollToCursor()
}

func (m *Model) cursorID() string {
	if m.col < 0 || m.col >= len(m.columns) {
		return ""
	}
	col := m.columns[m.col]
	if m.row < 0 || m.row >= len(col) {
		return ""
	}
	return col[m.row]
}

func (m *Model) scrollToCursor() {
	visible := m.visibleRows()
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+visible {
		m.offset = m.row - visible + 1
	}
}

func (m *Model) copyHovered() {
	id := m.view.Hovered()
	if id == "" {
		m.setStatus("Nothing selected", true)
		return
	}
	if err := m.copy(id); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard", id), false)
}

func (m *Model) refreshDetail() {
	id := m.view.Hovered()
	text, err := export.SubjectMarkdown(m.curriculum, m.view.Analysis(), id)
	if err != nil {
		m.detail.SetContent(err.Error())
		return
	}
	if m.md != nil {
		if rendered, err := m.md.Render(text); err == nil {
			text = rendered
		}
	}
	m.detail.SetContent(text)
	m.detail.GotoTop()
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

// Hovered returns the subject under the cursor, or "" after a blur.
func (m Model) Hovered() string {
	return m.view.Hovered()
}

// Renderer exposes the board's renderer.
func (m Model) Renderer() *Renderer {
	return m.renderer
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
