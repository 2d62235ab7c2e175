package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pensum/pkg/view"
)

// View implements tea.Model.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())
	if m.showDetail {
		sections = append(sections, m.theme.Detail.Width(max(m.width-4, 20)).Render(m.detail.View()))
	} else {
		sections = append(sections, m.renderColumns(), m.renderEdges())
	}
	sections = append(sections, m.renderStatus(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.curriculum.Career.Name
	if title == "" {
		title = "Curriculum"
	}
	info := fmt.Sprintf("%d subjects · %d semesters", len(m.curriculum.Subjects), len(m.columns))
	if id := m.view.Hovered(); id != "" {
		n, _ := m.view.Node(id)
		info += " · " + n.Label
	}
	return m.theme.Header.Render(truncate(title+"  "+info, max(m.width-2, 10)))
}

// bodyHeight is the number of lines left for columns or the detail pane.
func (m Model) bodyHeight() int {
	return max(m.height-6, 5)
}

// visibleRows is the number of subject rows a column can show.
func (m Model) visibleRows() int {
	return max(m.bodyHeight()-6, 1)
}

func (m Model) renderColumns() string {
	if len(m.columns) == 0 {
		return m.theme.Status.Render("No semesters.")
	}
	inner := m.colWidth - 4
	lg := m.view.Layout()
	visible := m.visibleRows()

	cols := make([]string, 0, len(m.columns))
	for ci, sem := range lg.Semesters {
		title, _ := lg.Node(sem.TitleID)
		titleStyle := m.theme.ColumnTitle
		if m.renderer.NodeState(sem.TitleID) == view.StateFaded {
			titleStyle = m.theme.FadedTitle
		}
		lines := []string{titleStyle.Render(truncate(title.Label, inner)), ""}

		ids := m.columns[ci]
		end := min(m.offset+visible, len(ids))
		if m.offset > 0 && m.offset < len(ids) {
			lines = append(lines, m.theme.Status.Render("↑ more"))
		}
		for ri := m.offset; ri < end; ri++ {
			lines = append(lines, m.renderSubject(ids[ri], inner, ci == m.col && ri == m.row))
		}
		if end < len(ids) {
			lines = append(lines, m.theme.Status.Render(fmt.Sprintf("↓ %d more", len(ids)-end)))
		}
		if len(ids) == 0 {
			lines = append(lines, m.theme.Status.Render("—"))
		}
		cols = append(cols, m.theme.Column.Width(m.colWidth-2).Render(strings.Join(lines, "\n")))
	}

	// Keep the cursor column on screen when the board is wider than the terminal.
	perScreen := max(m.width/m.colWidth, 1)
	first := 0
	if m.col >= perScreen {
		first = m.col - perScreen + 1
	}
	last := min(first+perScreen, len(cols))
	return lipgloss.JoinHorizontal(lipgloss.Top, cols[first:last]...)
}

func (m Model) renderSubject(id string, width int, cursor bool) string {
	n, _ := m.view.Node(id)
	state := m.renderer.NodeState(id)
	marker := "  "
	if cursor && m.view.Hovered() != "" {
		marker = "▸ "
	}
	label := padRight(truncate(n.Label, width-2), width-2)
	return marker + m.theme.NodeStyle(state).Render(label)
}

// renderEdges lists the prerequisite links that stay visible for the
// current hover, colored by role.
func (m Model) renderEdges() string {
	if m.view.Hovered() == "" {
		return m.theme.Status.Render(fmt.Sprintf("%d prerequisite links · move to a subject to trace it", len(m.view.Layout().Edges)))
	}
	var parts []string
	for _, e := range m.renderer.Edges() {
		if e.Role == view.RoleHidden {
			continue
		}
		edge, ok := m.view.Layout().Edge(e.ID)
		if !ok {
			continue
		}
		parts = append(parts, m.theme.EdgeStyle(e.Role).Render(edge.From+" → "+edge.To))
	}
	if len(parts) == 0 {
		return m.theme.Status.Render("No prerequisite links.")
	}
	return m.theme.Renderer.NewStyle().Width(max(m.width, 20)).Render(strings.Join(parts, "  "))
}

func (m Model) renderStatus() string {
	if m.statusMsg == "" {
		if len(m.warnings) > 0 {
			return m.theme.StatusError.Render(fmt.Sprintf("%d layout warnings: %s", len(m.warnings), m.warnings[0]))
		}
		return ""
	}
	if m.statusIsError {
		return m.theme.StatusError.Render(m.statusMsg)
	}
	return m.theme.Status.Render(m.statusMsg)
}
