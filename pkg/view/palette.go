package view

// Palette holds the colors and font sizes every style is derived from.
type Palette struct {
	NodeText        string  `yaml:"node_text" json:"node_text"`
	NodeBG          string  `yaml:"node_bg" json:"node_bg"`
	NodeBorder      string  `yaml:"node_border" json:"node_border"`
	HighlightBG     string  `yaml:"highlight_bg" json:"highlight_bg"`
	HighlightBorder string  `yaml:"highlight_border" json:"highlight_border"`
	ChildBG         string  `yaml:"child_bg" json:"child_bg"`
	ChildBorder     string  `yaml:"child_border" json:"child_border"`
	EdgeNormal      string  `yaml:"edge_normal" json:"edge_normal"`
	EdgeHover       string  `yaml:"edge_hover" json:"edge_hover"`
	EdgeOpacity     float64 `yaml:"edge_opacity" json:"edge_opacity"`
	TitleText       string  `yaml:"title_text" json:"title_text"`
	FontFace        string  `yaml:"font_face" json:"font_face"`
	FontSize        int     `yaml:"font_size" json:"font_size"`
	TitleFontSize   int     `yaml:"title_font_size" json:"title_font_size"`
}

// DefaultPalette returns the stock light theme.
func DefaultPalette() Palette {
	return Palette{
		NodeText:        "#1f2937",
		NodeBG:          "#f9fafb",
		NodeBorder:      "#6b7280",
		HighlightBG:     "#fef3c7",
		HighlightBorder: "#f59e0b",
		ChildBG:         "#dbeafe",
		ChildBorder:     "#3b82f6",
		EdgeNormal:      "#9ca3af",
		EdgeHover:       "#111827",
		EdgeOpacity:     0.8,
		TitleText:       "#374151",
		FontFace:        "Inter, Arial, sans-serif",
		FontSize:        14,
		TitleFontSize:   18,
	}
}

// Merge returns p with every non-zero field of o applied on top.
func (p Palette) Merge(o Palette) Palette {
	pick := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	pick(&p.NodeText, o.NodeText)
	pick(&p.NodeBG, o.NodeBG)
	pick(&p.NodeBorder, o.NodeBorder)
	pick(&p.HighlightBG, o.HighlightBG)
	pick(&p.HighlightBorder, o.HighlightBorder)
	pick(&p.ChildBG, o.ChildBG)
	pick(&p.ChildBorder, o.ChildBorder)
	pick(&p.EdgeNormal, o.EdgeNormal)
	pick(&p.EdgeHover, o.EdgeHover)
	pick(&p.TitleText, o.TitleText)
	pick(&p.FontFace, o.FontFace)
	if o.EdgeOpacity > 0 {
		p.EdgeOpacity = o.EdgeOpacity
	}
	if o.FontSize > 0 {
		p.FontSize = o.FontSize
	}
	if o.TitleFontSize > 0 {
		p.TitleFontSize = o.TitleFontSize
	}
	return p
}
