package export

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/pensum/pkg/view"
)

// GenerateDOT renders the curriculum as a Graphviz digraph. Each semester is
// a rank=same cluster. When focus is set, the hover styling of that subject
// is baked into node and edge attributes.
func GenerateDOT(v *view.GraphView, focus string) (string, error) {
	lg := v.Layout()

	nodeStyles := make(map[string]view.NodeStyle)
	edgeStyles := make(map[string]view.EdgeStyle)
	upd := v.BlurBatch()
	if focus != "" {
		var err error
		if upd, err = v.Compute(focus); err != nil {
			return "", err
		}
	}
	for _, n := range upd.Nodes {
		nodeStyles[n.ID] = n.NodeStyle
	}
	for _, e := range upd.Edges {
		edgeStyles[e.ID] = e.EdgeStyle
	}

	var sb strings.Builder
	sb.WriteString("digraph curriculum {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Inter, Arial, sans-serif\"];\n")

	for _, sem := range lg.Semesters {
		title, _ := lg.Node(sem.TitleID)
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n", sem.Index)
		fmt.Fprintf(&sb, "    label=%s;\n    rank=same;\n", dotQuote(title.Label))
		for _, id := range sem.Subjects {
			n, _ := lg.Node(id)
			st := nodeStyles[id]
			fill, border := "#ffffff", "#000000"
			if st.Color != nil {
				fill, border = st.Color.Background, st.Color.Border
			}
			fmt.Fprintf(&sb, "    %s [label=%s, fillcolor=%s, color=%s, penwidth=%d, fontcolor=%s%s];\n",
				dotQuote(id), dotQuote(n.Label), dotQuote(fadeHex(fill, st.Opacity)), dotQuote(fadeHex(border, st.Opacity)),
				st.BorderWidth, dotQuote(fadeHex(st.Font.Color, st.Opacity)), boldAttr(st.Font.Bold))
		}
		sb.WriteString("  }\n")
	}

	for _, e := range lg.Edges {
		st := edgeStyles[e.ID]
		style := "solid"
		if st.Hidden {
			style = "invis"
		}
		fmt.Fprintf(&sb, "  %s -> %s [color=%s, penwidth=%s, style=%s];\n",
			dotQuote(e.From), dotQuote(e.To), dotQuote(fadeHex(st.Color.Color, st.Color.Opacity)), ftoa(st.Width), style)
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

func boldAttr(bold bool) string {
	if bold {
		return ", fontname=\"Inter Bold, Arial Bold, sans-serif\""
	}
	return ""
}

// fadeHex blends a hex color over white.
func fadeHex(hex string, opacity float64) string {
	return css(withOpacity(parseHex(hex), opacity))
}

func dotQuote(s string) string {
	return "\"" + strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", " ").Replace(s) + "\""
}
