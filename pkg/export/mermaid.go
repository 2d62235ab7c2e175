package export

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/vanderheijden86/pensum/pkg/view"
)

// GenerateMermaid renders the curriculum as a Mermaid flowchart with one
// subgraph per semester. When focus is set, nodes and edges carry the
// classes of that subject's hover state.
func GenerateMermaid(v *view.GraphView, focus string) (string, error) {
	lg := v.Layout()
	p := v.Palette()

	states := make(map[string]view.NodeState)
	roles := make(map[string]view.EdgeRole)
	if focus != "" {
		upd, err := v.Compute(focus)
		if err != nil {
			return "", err
		}
		for _, n := range upd.Nodes {
			states[n.ID] = n.State
		}
		for _, e := range upd.Edges {
			roles[e.ID] = e.Role
		}
	}

	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	fmt.Fprintf(&sb, "    classDef default fill:%s,stroke:%s,color:%s\n", p.NodeBG, p.NodeBorder, p.NodeText)
	fmt.Fprintf(&sb, "    classDef hovered fill:%s,stroke:%s,stroke-width:3px,font-weight:bold\n", p.HighlightBG, p.HighlightBorder)
	fmt.Fprintf(&sb, "    classDef ancestor fill:%s,stroke:%s,stroke-width:3px\n", p.HighlightBG, p.HighlightBorder)
	fmt.Fprintf(&sb, "    classDef child fill:%s,stroke:%s,stroke-width:3px\n", p.ChildBG, p.ChildBorder)
	sb.WriteString("    classDef faded opacity:0.2\n\n")

	ids := newMermaidIDs()
	for _, sem := range lg.Semesters {
		title, _ := lg.Node(sem.TitleID)
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", ids.get(sem.TitleID), sanitizeMermaidText(title.Label))
		for _, id := range sem.Subjects {
			n, _ := lg.Node(id)
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", ids.get(id), sanitizeMermaidText(n.Label))
		}
		sb.WriteString("    end\n")
	}
	sb.WriteString("\n")

	for i, e := range lg.Edges {
		link := "-->"
		if roles[e.ID] == view.RoleHidden {
			link = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", ids.get(e.From), link, ids.get(e.To))
		switch roles[e.ID] {
		case view.RoleAncestorPath:
			fmt.Fprintf(&sb, "    linkStyle %d stroke:%s,stroke-width:3px\n", i, p.HighlightBorder)
		case view.RoleDescendantPath:
			fmt.Fprintf(&sb, "    linkStyle %d stroke:%s,stroke-width:3px\n", i, p.ChildBorder)
		case view.RoleRelated:
			fmt.Fprintf(&sb, "    linkStyle %d stroke:%s,stroke-width:2px\n", i, p.EdgeHover)
		}
	}

	if focus != "" {
		for _, n := range lg.SubjectNodes() {
			if st := states[n.ID]; st != "" && st != view.StateDefault {
				fmt.Fprintf(&sb, "    class %s %s\n", ids.get(n.ID), st)
			}
		}
	}
	return sb.String(), nil
}

// mermaidIDs hands out deterministic, collision-free Mermaid ids.
type mermaidIDs struct {
	byOrig map[string]string
	used   map[string]bool
}

func newMermaidIDs() *mermaidIDs {
	return &mermaidIDs{byOrig: make(map[string]string), used: make(map[string]bool)}
}

func (m *mermaidIDs) get(orig string) string {
	if safe, ok := m.byOrig[orig]; ok {
		return safe
	}
	safe := sanitizeMermaidID(orig)
	if m.used[safe] {
		h := fnv.New32a()
		_, _ = h.Write([]byte(orig))
		safe = fmt.Sprintf("%s_%x", safe, h.Sum32())
	}
	m.used[safe] = true
	m.byOrig[orig] = safe
	return safe
}

// sanitizeMermaidID keeps letters, digits, '-' and '_'.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "node"
	}
	return sb.String()
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
	return truncate(strings.TrimSpace(result), 40)
}
