package view

import (
	"github.com/vanderheijden86/pensum/pkg/layout"
)

// VisNode is a node as handed to a vis-network style renderer.
type VisNode struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Group    string    `json:"group,omitempty"`
	Title    string    `json:"title,omitempty"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Shape    string    `json:"shape"`
	Fixed    bool      `json:"fixed"`
	Physics  bool      `json:"physics"`
	Margin   float64   `json:"margin,omitempty"`
	Semester int       `json:"semester"`
	State    NodeState `json:"state"`
	NodeStyle
}

// IsTitle reports whether the node is a semester title.
func (n VisNode) IsTitle() bool { return n.Shape == "text" }

// VisEdge is an edge as handed to a vis-network style renderer.
type VisEdge struct {
	ID         string   `json:"id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Arrows     string   `json:"arrows"`
	HoverWidth float64  `json:"hoverWidth"`
	Role       EdgeRole `json:"role"`
	EdgeStyle
}

// NodeUpdate is one entry of a node style batch.
type NodeUpdate struct {
	ID    string    `json:"id"`
	State NodeState `json:"state"`
	NodeStyle
}

// EdgeUpdate is one entry of an edge style batch.
type EdgeUpdate struct {
	ID   string   `json:"id"`
	Role EdgeRole `json:"role"`
	EdgeStyle
}

// Update is the batch produced by one hover or blur.
type Update struct {
	Hovered string       `json:"hovered,omitempty"`
	Nodes   []NodeUpdate `json:"nodes"`
	Edges   []EdgeUpdate `json:"edges"`
}

// Interaction is the vis-network interaction block.
type Interaction struct {
	Hover     bool `json:"hover"`
	DragView  bool `json:"dragView"`
	ZoomView  bool `json:"zoomView"`
	DragNodes bool `json:"dragNodes"`
}

// LayoutOptions is the vis-network layout block.
type LayoutOptions struct {
	Hierarchical bool `json:"hierarchical"`
}

// GroupStyle is the per-semester group definition.
type GroupStyle struct {
	Color NodeColor `json:"color"`
	Font  Font      `json:"font"`
}

// Options is the renderer configuration object.
type Options struct {
	Interaction Interaction           `json:"interaction"`
	Physics     bool                  `json:"physics"`
	Layout      LayoutOptions         `json:"layout"`
	Groups      map[string]GroupStyle `json:"groups"`
}

func (p Palette) visNode(n layout.Node, margin float64) VisNode {
	if n.IsTitle() {
		return VisNode{
			ID:        n.ID,
			Label:     n.Label,
			X:         n.X,
			Y:         n.Y,
			Shape:     "text",
			Fixed:     true,
			Semester:  n.Semester,
			State:     StateDefault,
			NodeStyle: p.TitleStyleFor(StateDefault),
		}
	}
	st := p.NodeStyleFor(StateDefault)
	st.Color.Highlight = &ColorPair{Background: p.HighlightBG, Border: p.HighlightBorder}
	return VisNode{
		ID:        n.ID,
		Label:     n.Label,
		Group:     n.Group,
		Title:     n.Label,
		X:         n.X,
		Y:         n.Y,
		Shape:     "box",
		Fixed:     true,
		Margin:    margin,
		Semester:  n.Semester,
		State:     StateDefault,
		NodeStyle: st,
	}
}

func (p Palette) visEdge(e layout.Edge) VisEdge {
	st := p.EdgeStyleFor(RoleDefault)
	st.Color.Highlight = p.EdgeHover
	return VisEdge{
		ID:         e.ID,
		From:       e.From,
		To:         e.To,
		Arrows:     "to",
		HoverWidth: 3,
		Role:       RoleDefault,
		EdgeStyle:  st,
	}
}

func (p Palette) options(g *layout.Graph) Options {
	groups := make(map[string]GroupStyle, len(g.Semesters))
	for _, sem := range g.Semesters {
		groups[layout.Group(sem.Index)] = GroupStyle{
			Color: NodeColor{
				Background: p.NodeBG,
				Border:     p.NodeBorder,
				Highlight:  &ColorPair{Background: p.HighlightBG, Border: p.HighlightBorder},
			},
			Font: Font{Color: p.NodeText},
		}
	}
	return Options{
		Interaction: Interaction{Hover: true, DragView: true, ZoomView: true},
		Physics:     false,
		Layout:      LayoutOptions{Hierarchical: false},
		Groups:      groups,
	}
}
