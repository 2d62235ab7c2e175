package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/pensum/pkg/metrics"
	"github.com/vanderheijden86/pensum/pkg/view"
)

// SnapshotOptions controls static graph snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Optional heading
	View   *view.GraphView
	Focus  string // Optional subject drawn in its hover state
}

// SaveGraphSnapshot renders the semester columns as SVG or PNG.
func SaveGraphSnapshot(opts SnapshotOptions) error {
	if opts.View == nil {
		return fmt.Errorf("graph view is required for snapshot export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	scene, err := buildScene(opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	start := time.Now()
	defer func() { metrics.SnapshotRender.Record(time.Since(start)) }()

	switch format {
	case "png":
		return renderPNG(opts.Path, scene)
	default:
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := renderSVG(f, scene); err != nil {
			return err
		}
		return f.Close()
	}
}

// --- scene -------------------------------------------------------------------

const (
	padding      = 36.0
	headerHeight = 48.0
	nodeW        = 210.0
	nodeH        = 44.0
)

type sceneNode struct {
	ID, Label string
	Title     bool
	X, Y      float64
	Style     view.NodeStyle
}

type sceneEdge struct {
	From, To sceneNode
	Style    view.EdgeStyle
}

type scene struct {
	Title  string
	Width  int
	Height int
	Nodes  []sceneNode
	Edges  []sceneEdge
	Ink    color.RGBA
}

func buildScene(opts SnapshotOptions) (scene, error) {
	v := opts.View
	lg := v.Layout()

	upd := v.BlurBatch()
	if opts.Focus != "" {
		var err error
		if upd, err = v.Compute(opts.Focus); err != nil {
			return scene{}, err
		}
	}
	nodeStyles := make(map[string]view.NodeStyle, len(upd.Nodes))
	for _, n := range upd.Nodes {
		nodeStyles[n.ID] = n.NodeStyle
	}
	edgeStyles := make(map[string]view.EdgeStyle, len(upd.Edges))
	for _, e := range upd.Edges {
		edgeStyles[e.ID] = e.EdgeStyle
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Curriculum"
	}
	if opts.Focus != "" {
		title += " - " + opts.Focus
	}

	s := scene{
		Title:  title,
		Width:  int(padding*2 + max(lg.Bounds.Width, nodeW)),
		Height: int(padding*2 + headerHeight + lg.Bounds.Height + nodeH),
		Ink:    parseHex(v.Palette().TitleText),
	}
	s.Width = max(s.Width, 480)
	s.Height = max(s.Height, 320)

	byID := make(map[string]sceneNode, len(lg.Nodes))
	for _, n := range lg.Nodes {
		sn := sceneNode{
			ID:    n.ID,
			Label: n.Label,
			Title: n.IsTitle(),
			X:     padding + n.X,
			Y:     padding + headerHeight + n.Y,
			Style: nodeStyles[n.ID],
		}
		byID[n.ID] = sn
		s.Nodes = append(s.Nodes, sn)
	}
	for _, e := range lg.Edges {
		st := edgeStyles[e.ID]
		if st.Hidden {
			continue
		}
		s.Edges = append(s.Edges, sceneEdge{From: byID[e.From], To: byID[e.To], Style: st})
	}
	return s, nil
}

// anchors returns the start and end points of an edge: right side to left
// side across columns, bottom to top within one column.
func (e sceneEdge) anchors() (x1, y1, x2, y2 float64) {
	if e.From.X == e.To.X {
		x1, x2 = e.From.X+nodeW/2, e.To.X+nodeW/2
		if e.From.Y < e.To.Y {
			return x1, e.From.Y + nodeH, x2, e.To.Y
		}
		return x1, e.From.Y, x2, e.To.Y + nodeH
	}
	return e.From.X + nodeW, e.From.Y + nodeH/2, e.To.X, e.To.Y + nodeH/2
}

// --- rendering -------------------------------------------------------------

var colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}

func renderPNG(path string, s scene) error {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(s.Ink)
	dc.DrawStringAnchored(s.Title, padding, padding, 0, 0.5)

	for _, e := range s.Edges {
		x1, y1, x2, y2 := e.anchors()
		dc.SetColor(withOpacity(parseHex(e.Style.Color.Color), e.Style.Color.Opacity))
		dc.SetLineWidth(e.Style.Width)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		drawArrow(dc, x1, y1, x2, y2)
	}

	for _, n := range s.Nodes {
		if n.Title {
			dc.SetColor(withOpacity(parseHex(n.Style.Font.Color), n.Style.Opacity))
			dc.DrawStringAnchored(n.Label, n.X, n.Y, 0, 0.5)
			continue
		}
		fill, border := nodeColors(n)
		dc.SetColor(fill)
		dc.DrawRoundedRectangle(n.X, n.Y, nodeW, nodeH, 6)
		dc.Fill()
		dc.SetColor(border)
		dc.SetLineWidth(float64(n.Style.BorderWidth))
		dc.DrawRoundedRectangle(n.X, n.Y, nodeW, nodeH, 6)
		dc.Stroke()
		dc.SetColor(withOpacity(parseHex(n.Style.Font.Color), n.Style.Opacity))
		dc.DrawStringAnchored(truncate(n.Label, 28), n.X+nodeW/2, n.Y+nodeH/2, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}

func drawArrow(dc *gg.Context, x1, y1, x2, y2 float64) {
	dx, dy := x2-x1, y2-y1
	length := max(abs(dx)+abs(dy), 1)
	ux, uy := dx/length*8, dy/length*8
	dc.NewSubPath()
	dc.MoveTo(x2, y2)
	dc.LineTo(x2-ux-uy/2, y2-uy+ux/2)
	dc.LineTo(x2-ux+uy/2, y2-uy-ux/2)
	dc.ClosePath()
	dc.Fill()
}

func renderSVG(w io.Writer, s scene) error {
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height)
	canvas.Rect(0, 0, s.Width, s.Height, "fill:"+css(colorBackdrop))
	canvas.Text(int(padding), int(padding), s.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold", css(s.Ink)))

	canvas.Def()
	canvas.Marker("arrow", 8, 4, 8, 8, "orient=\"auto\"")
	canvas.Path("M0,0 L8,4 L0,8 z", "fill:context-stroke")
	canvas.MarkerEnd()
	canvas.DefEnd()

	for _, e := range s.Edges {
		x1, y1, x2, y2 := e.anchors()
		canvas.Line(int(x1), int(y1), int(x2), int(y2),
			fmt.Sprintf("stroke:%s;stroke-opacity:%s;stroke-width:%s;marker-end:url(#arrow)",
				e.Style.Color.Color, ftoa(e.Style.Color.Opacity), ftoa(e.Style.Width)))
	}

	for _, n := range s.Nodes {
		x, y := int(n.X), int(n.Y)
		if n.Title {
			canvas.Text(x, y, n.Label, fmt.Sprintf("fill:%s;opacity:%s;font-size:%dpx;font-family:sans-serif;font-weight:bold",
				n.Style.Font.Color, ftoa(n.Style.Opacity), n.Style.Font.Size))
			continue
		}
		bg, border := "#ffffff", "#000000"
		if n.Style.Color != nil {
			bg, border = n.Style.Color.Background, n.Style.Color.Border
		}
		weight := "normal"
		if n.Style.Font.Bold {
			weight = "bold"
		}
		canvas.Gid(n.ID)
		canvas.Roundrect(x, y, int(nodeW), int(nodeH), 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%d;opacity:%s", bg, border, n.Style.BorderWidth, ftoa(n.Style.Opacity)))
		canvas.Text(x+int(nodeW)/2, y+int(nodeH)/2+5, truncate(n.Label, 28),
			fmt.Sprintf("fill:%s;opacity:%s;font-size:%dpx;font-family:sans-serif;font-weight:%s;text-anchor:middle",
				n.Style.Font.Color, ftoa(n.Style.Opacity), n.Style.Font.Size, weight))
		canvas.Gend()
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func nodeColors(n sceneNode) (fill, border color.RGBA) {
	fill, border = colorBackdrop, color.RGBA{0, 0, 0, 0xff}
	if n.Style.Color != nil {
		fill = parseHex(n.Style.Color.Background)
		border = parseHex(n.Style.Color.Border)
	}
	return withOpacity(fill, n.Style.Opacity), withOpacity(border, n.Style.Opacity)
}

// parseHex reads "#rrggbb"; anything else yields opaque black.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{0, 0, 0, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

// withOpacity blends c over the white backdrop.
func withOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 || opacity <= 0 {
		return c
	}
	mix := func(ch uint8) uint8 {
		return uint8(float64(ch)*opacity + 255*(1-opacity))
	}
	return color.RGBA{mix(c.R), mix(c.G), mix(c.B), 0xff}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
