package view

// NodeState is the visual state of a node. States are mutually exclusive.
type NodeState string

const (
	StateDefault  NodeState = "default"
	StateHovered  NodeState = "hovered"
	StateAncestor NodeState = "ancestor"
	StateChild    NodeState = "child"
	StateFaded    NodeState = "faded"
)

// EdgeRole is the visual role of an edge while a node is hovered.
type EdgeRole string

const (
	RoleDefault        EdgeRole = "default"
	RoleRelated        EdgeRole = "related"
	RoleAncestorPath   EdgeRole = "ancestor-path"
	RoleDescendantPath EdgeRole = "descendant-path"
	RoleHidden         EdgeRole = "hidden"
)

// ColorPair is a background/border pair.
type ColorPair struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

// NodeColor is the vis-network node color object.
type NodeColor struct {
	Background string     `json:"background"`
	Border     string     `json:"border"`
	Highlight  *ColorPair `json:"highlight,omitempty"`
}

// Font is the vis-network font object.
type Font struct {
	Color string `json:"color"`
	Bold  bool   `json:"bold"`
	Size  int    `json:"size"`
	Face  string `json:"face,omitempty"`
}

// NodeStyle is every visual attribute hover and blur touch on a node.
// Title nodes carry no color box.
type NodeStyle struct {
	Color       *NodeColor `json:"color,omitempty"`
	Font        Font       `json:"font"`
	BorderWidth int        `json:"borderWidth"`
	Opacity     float64    `json:"opacity"`
}

// EdgeColor is the vis-network edge color object.
type EdgeColor struct {
	Color     string  `json:"color"`
	Opacity   float64 `json:"opacity"`
	Highlight string  `json:"highlight,omitempty"`
}

// EdgeStyle is every visual attribute hover and blur touch on an edge.
type EdgeStyle struct {
	Color  EdgeColor `json:"color"`
	Width  float64   `json:"width"`
	Hidden bool      `json:"hidden"`
}

const fadedOpacity = 0.2

func (p Palette) font(bold bool, size int) Font {
	return Font{Color: p.NodeText, Bold: bold, Size: size, Face: p.FontFace}
}

// NodeStyleFor returns the style of a subject node in state s.
func (p Palette) NodeStyleFor(s NodeState) NodeStyle {
	switch s {
	case StateHovered:
		return NodeStyle{
			Color:       &NodeColor{Background: p.HighlightBG, Border: p.HighlightBorder},
			Font:        p.font(true, p.FontSize+2),
			BorderWidth: 3,
			Opacity:     1,
		}
	case StateAncestor:
		return NodeStyle{
			Color:       &NodeColor{Background: p.HighlightBG, Border: p.HighlightBorder},
			Font:        p.font(true, p.FontSize),
			BorderWidth: 3,
			Opacity:     1,
		}
	case StateChild:
		return NodeStyle{
			Color:       &NodeColor{Background: p.ChildBG, Border: p.ChildBorder},
			Font:        p.font(true, p.FontSize),
			BorderWidth: 3,
			Opacity:     1,
		}
	case StateFaded:
		st := p.NodeStyleFor(StateDefault)
		st.Opacity = fadedOpacity
		return st
	default:
		return NodeStyle{
			Color:       &NodeColor{Background: p.NodeBG, Border: p.NodeBorder},
			Font:        p.font(false, p.FontSize),
			BorderWidth: 2,
			Opacity:     1,
		}
	}
}

// TitleStyleFor returns the style of a semester title. A hovered title takes
// the hover font; titles never carry a color box.
func (p Palette) TitleStyleFor(s NodeState) NodeStyle {
	st := NodeStyle{
		Font:    Font{Color: p.TitleText, Bold: true, Size: p.TitleFontSize},
		Opacity: 1,
	}
	switch s {
	case StateFaded:
		st.Opacity = fadedOpacity
	case StateHovered:
		st.Font = p.font(true, p.FontSize+2)
	}
	return st
}

// EdgeStyleFor returns the style of an edge in role r.
func (p Palette) EdgeStyleFor(r EdgeRole) EdgeStyle {
	switch r {
	case RoleRelated:
		return EdgeStyle{Color: EdgeColor{Color: p.EdgeHover, Opacity: 1}, Width: 2.5}
	case RoleAncestorPath:
		return EdgeStyle{Color: EdgeColor{Color: p.HighlightBorder, Opacity: 1}, Width: 3}
	case RoleDescendantPath:
		return EdgeStyle{Color: EdgeColor{Color: p.ChildBorder, Opacity: 1}, Width: 3}
	case RoleHidden:
		st := p.EdgeStyleFor(RoleDefault)
		st.Hidden = true
		return st
	default:
		return EdgeStyle{Color: EdgeColor{Color: p.EdgeNormal, Opacity: p.EdgeOpacity}, Width: 1.5}
	}
}
