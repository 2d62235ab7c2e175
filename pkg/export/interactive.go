package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pensum/pkg/view"
)

//go:embed templates/graph.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/graph.html.tmpl"))

// InteractiveGraphOptions configures HTML graph generation.
type InteractiveGraphOptions struct {
	View  *view.GraphView
	Title string
	Path  string // Output path; ".html" is enforced
}

// pagePayload is the data the page script reads. Static pages carry a style
// table plus, per hoverable node, only the nodes that stay lit and the edges
// that stay visible; the script treats every missing node as faded and every
// missing edge as hidden, and blur restores the defaults.
type pagePayload struct {
	Live    bool                 `json:"live"`
	Nodes   []view.VisNode       `json:"nodes"`
	Edges   []view.VisEdge       `json:"edges"`
	Options view.Options         `json:"options"`
	Styles  *pageStyles          `json:"styles,omitempty"`
	Hover   map[string]hoverDiff `json:"hover,omitempty"`
}

type pageStyles struct {
	Node  map[view.NodeState]view.NodeStyle `json:"node"`
	Title map[view.NodeState]view.NodeStyle `json:"title"`
	Edge  map[view.EdgeRole]view.EdgeStyle  `json:"edge"`
}

// hoverDiff lists the entries of one hover batch that differ from the faded
// and hidden baseline.
type hoverDiff struct {
	Nodes map[string]view.NodeState `json:"n"`
	Edges map[string]view.EdgeRole  `json:"e,omitempty"`
}

var (
	nodeStates = []view.NodeState{view.StateDefault, view.StateHovered, view.StateAncestor, view.StateChild, view.StateFaded}
	edgeRoles  = []view.EdgeRole{view.RoleDefault, view.RoleRelated, view.RoleAncestorPath, view.RoleDescendantPath, view.RoleHidden}
)

func newPageStyles(p view.Palette) *pageStyles {
	st := &pageStyles{
		Node:  make(map[view.NodeState]view.NodeStyle, len(nodeStates)),
		Title: make(map[view.NodeState]view.NodeStyle, len(nodeStates)),
		Edge:  make(map[view.EdgeRole]view.EdgeStyle, len(edgeRoles)),
	}
	for _, s := range nodeStates {
		st.Node[s] = p.NodeStyleFor(s)
		st.Title[s] = p.TitleStyleFor(s)
	}
	for _, r := range edgeRoles {
		st.Edge[r] = p.EdgeStyleFor(r)
	}
	return st
}

func sparseHover(upd view.Update) hoverDiff {
	d := hoverDiff{Nodes: make(map[string]view.NodeState)}
	for _, n := range upd.Nodes {
		if n.State != view.StateFaded {
			d.Nodes[n.ID] = n.State
		}
	}
	for _, e := range upd.Edges {
		if e.Role == view.RoleHidden {
			continue
		}
		if d.Edges == nil {
			d.Edges = make(map[string]view.EdgeRole)
		}
		d.Edges[e.ID] = e.Role
	}
	return d
}

type pageData struct {
	Title         string
	Live          bool
	SubjectCount  int
	EdgeCount     int
	SemesterCount int
	Payload       template.JS
}

// PageOptions controls WritePage.
type PageOptions struct {
	Title string
	// Live pages send hover and blur over a /ws websocket instead of
	// carrying precomputed batches.
	Live bool
}

// WritePage renders the vis-network page for v to w.
func WritePage(w io.Writer, v *view.GraphView, opts PageOptions) error {
	payload := pagePayload{
		Live:    opts.Live,
		Nodes:   v.InitialNodes(),
		Edges:   v.InitialEdges(),
		Options: v.Options(),
	}
	if !opts.Live {
		payload.Styles = newPageStyles(v.Palette())
		payload.Hover = make(map[string]hoverDiff, len(v.Layout().Nodes))
		for _, n := range v.Layout().Nodes {
			upd, err := v.Compute(n.ID)
			if err != nil {
				return fmt.Errorf("compute hover for %s: %w", n.ID, err)
			}
			payload.Hover[n.ID] = sparseHover(upd)
		}
	}

	// goccy escapes <, > and & like encoding/json, so the payload cannot
	// close the surrounding script element.
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal graph data: %w", err)
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Curriculum"
	}
	lg := v.Layout()
	return pageTemplate.Execute(w, pageData{
		Title:         title,
		Live:          opts.Live,
		SubjectCount:  len(lg.SubjectNodes()),
		EdgeCount:     len(lg.Edges),
		SemesterCount: len(lg.Semesters),
		Payload:       template.JS(raw),
	})
}

// GenerateInteractiveGraphHTML writes a self-contained HTML page and returns
// its path.
func GenerateInteractiveGraphHTML(opts InteractiveGraphOptions) (string, error) {
	if opts.View == nil {
		return "", fmt.Errorf("graph view is required")
	}
	if len(opts.View.Layout().SubjectNodes()) == 0 {
		return "", fmt.Errorf("no subjects to export")
	}

	outputPath := opts.Path
	if outputPath == "" {
		outputPath = "curriculum.html"
	}
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".html"
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WritePage(f, opts.View, PageOptions{Title: opts.Title}); err != nil {
		return "", err
	}
	return outputPath, f.Close()
}
