package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pensum/pkg/view"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the pre-computed styles of the semester board. Node and edge
// styles are derived from the same palette the browser view uses.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor

	Base        lipgloss.Style
	Header      lipgloss.Style
	Column      lipgloss.Style
	ColumnTitle lipgloss.Style
	FadedTitle  lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Detail      lipgloss.Style

	Nodes map[view.NodeState]lipgloss.Style
	Edges map[view.EdgeRole]lipgloss.Style
}

// DefaultTheme returns the board theme for palette p.
func DefaultTheme(r *lipgloss.Renderer, p view.Palette) Theme {
	t := Theme{
		Renderer: r,
		Primary:  lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext:  lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:    lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Danger:   lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Column = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.ColumnTitle = r.NewStyle().Foreground(ThemeFg(p.TitleText)).Bold(true)
	t.FadedTitle = r.NewStyle().Foreground(t.Muted)
	t.Status = r.NewStyle().Foreground(t.Subtext)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Detail = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)

	t.Nodes = map[view.NodeState]lipgloss.Style{
		view.StateDefault: r.NewStyle().Foreground(t.Base.GetForeground()),
		view.StateHovered: r.NewStyle().
			Foreground(ThemeFg(p.NodeText)).
			Background(ThemeBg(p.HighlightBG)).
			BorderForeground(ThemeFg(p.HighlightBorder)).
			Bold(true).Underline(true),
		view.StateAncestor: r.NewStyle().
			Foreground(ThemeFg(p.HighlightBorder)).
			Background(ThemeBg(p.HighlightBG)).
			Bold(true),
		view.StateChild: r.NewStyle().
			Foreground(ThemeFg(p.ChildBorder)).
			Background(ThemeBg(p.ChildBG)).
			Bold(true),
		view.StateFaded: r.NewStyle().Foreground(t.Muted).Faint(true),
	}
	t.Edges = map[view.EdgeRole]lipgloss.Style{
		view.RoleDefault:        r.NewStyle().Foreground(ThemeFg(p.EdgeNormal)),
		view.RoleRelated:        r.NewStyle().Foreground(ThemeFg(p.EdgeHover)),
		view.RoleAncestorPath:   r.NewStyle().Foreground(ThemeFg(p.HighlightBorder)).Bold(true),
		view.RoleDescendantPath: r.NewStyle().Foreground(ThemeFg(p.ChildBorder)).Bold(true),
		view.RoleHidden:         r.NewStyle().Foreground(t.Muted).Faint(true),
	}
	return t
}

// NodeStyle returns the style for a node state, falling back to default.
func (t Theme) NodeStyle(s view.NodeState) lipgloss.Style {
	if st, ok := t.Nodes[s]; ok {
		return st
	}
	return t.Nodes[view.StateDefault]
}

// EdgeStyle returns the style for an edge role, falling back to default.
func (t Theme) EdgeStyle(r view.EdgeRole) lipgloss.Style {
	if st, ok := t.Edges[r]; ok {
		return st
	}
	return t.Edges[view.RoleDefault]
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout), view.DefaultPalette())
}
