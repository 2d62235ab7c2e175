// Package view owns the interactive state of a curriculum graph: the node
// and edge collections, the palette and the hovered subject. Hover and blur
// produce style batches that a Renderer applies.
package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/layout"
	"github.com/vanderheijden86/pensum/pkg/metrics"
	"github.com/vanderheijden86/pensum/pkg/model"
)

// ErrUnknownNode is returned when an event names a node the view does not hold.
var ErrUnknownNode = errors.New("unknown node")

// Config controls how a GraphView lays out and colors the curriculum.
type Config struct {
	Dimensions layout.Dimensions
	Palette    Palette
}

// DefaultConfig returns the stock dimensions and palette.
func DefaultConfig() Config {
	return Config{Dimensions: layout.DefaultDimensions(), Palette: DefaultPalette()}
}

// GraphView is the graph-view object. Its methods are safe for concurrent use.
type GraphView struct {
	mu      sync.Mutex
	graph   *analysis.Graph
	layout  *layout.Graph
	palette Palette
	nodes   *DataSet[VisNode]
	edges   *DataSet[VisEdge]
	hovered string
}

// New prepares c and returns a view with every node and edge in its
// default style, plus the layout warnings.
func New(c *model.Curriculum, cfg Config) (*GraphView, []layout.Warning) {
	if cfg.Palette == (Palette{}) {
		cfg.Palette = DefaultPalette()
	}
	lg, warnings := layout.Prepare(c, cfg.Dimensions)

	v := &GraphView{
		graph:   analysis.NewGraph(c),
		layout:  lg,
		palette: cfg.Palette,
		nodes:   NewDataSet(func(n VisNode) string { return n.ID }),
		edges:   NewDataSet(func(e VisEdge) string { return e.ID }),
	}
	for _, n := range lg.Nodes {
		v.nodes.Update(cfg.Palette.visNode(n, lg.Dims.NodeMargin))
	}
	for _, e := range lg.Edges {
		v.edges.Update(cfg.Palette.visEdge(e))
	}
	return v, warnings
}

// Layout returns the prepared graph data.
func (v *GraphView) Layout() *layout.Graph { return v.layout }

// Analysis returns the prerequisite graph.
func (v *GraphView) Analysis() *analysis.Graph { return v.graph }

// Palette returns the palette styles are derived from.
func (v *GraphView) Palette() Palette { return v.palette }

// Hovered returns the currently hovered id, or "" when nothing is hovered.
func (v *GraphView) Hovered() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hovered
}

// InitialNodes returns the nodes in their current style, titles first.
func (v *GraphView) InitialNodes() []VisNode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nodes.All()
}

// InitialEdges returns the edges in their current style.
func (v *GraphView) InitialEdges() []VisEdge {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edges.All()
}

// Options returns the renderer configuration.
func (v *GraphView) Options() Options {
	return v.palette.options(v.layout)
}

// Node returns the current state of one node.
func (v *GraphView) Node(id string) (VisNode, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nodes.Get(id)
}

// Edge returns the current state of one edge.
func (v *GraphView) Edge(id string) (VisEdge, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edges.Get(id)
}

// Compute returns the batch hovering id would produce without applying it.
// A title has no prerequisites and no dependents, so hovering one fades
// every other node and hides every edge.
func (v *GraphView) Compute(id string) (Update, error) {
	n, ok := v.layout.Node(id)
	if !ok {
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	ancestors, children := analysis.NewIDSet(), analysis.NewIDSet()
	if !n.IsTitle() {
		ancestors = v.graph.Ancestors(id)
		children = v.graph.Children(id)
	}
	related := ancestors.Union(children)
	related.Add(id)

	upd := Update{
		Hovered: id,
		Nodes:   make([]NodeUpdate, 0, len(v.layout.Nodes)),
		Edges:   make([]EdgeUpdate, 0, len(v.layout.Edges)),
	}
	for _, node := range v.layout.Nodes {
		state := StateFaded
		switch {
		case node.ID == id:
			state = StateHovered
		case node.IsTitle():
		case ancestors.Has(node.ID):
			state = StateAncestor
		case children.Has(node.ID):
			state = StateChild
		}
		upd.Nodes = append(upd.Nodes, NodeUpdate{ID: node.ID, State: state, NodeStyle: v.styleFor(node, state)})
	}

	for _, e := range v.layout.Edges {
		role := edgeRole(e, id, ancestors, children, related)
		upd.Edges = append(upd.Edges, EdgeUpdate{ID: e.ID, Role: role, EdgeStyle: v.palette.EdgeStyleFor(role)})
	}
	return upd, nil
}

// edgeRole classifies e while id is hovered. Edges touching an unrelated
// node are hidden. Only the edges entering id from an ancestor form the
// ancestor path, and only id -> child edges form the descendant path.
// Deeper edges between ancestors are merely related.
func edgeRole(e layout.Edge, id string, ancestors, children, related analysis.IDSet) EdgeRole {
	if !related.Has(e.From) || !related.Has(e.To) {
		return RoleHidden
	}
	if e.To == id && ancestors.Has(e.From) {
		return RoleAncestorPath
	}
	if e.From == id && children.Has(e.To) {
		return RoleDescendantPath
	}
	return RoleRelated
}

func (v *GraphView) styleFor(n layout.Node, s NodeState) NodeStyle {
	if n.IsTitle() {
		return v.palette.TitleStyleFor(s)
	}
	return v.palette.NodeStyleFor(s)
}

func (v *GraphView) blurBatch() Update {
	upd := Update{
		Nodes: make([]NodeUpdate, 0, len(v.layout.Nodes)),
		Edges: make([]EdgeUpdate, 0, len(v.layout.Edges)),
	}
	for _, n := range v.layout.Nodes {
		upd.Nodes = append(upd.Nodes, NodeUpdate{ID: n.ID, State: StateDefault, NodeStyle: v.styleFor(n, StateDefault)})
	}
	for _, e := range v.layout.Edges {
		upd.Edges = append(upd.Edges, EdgeUpdate{ID: e.ID, Role: RoleDefault, EdgeStyle: v.palette.EdgeStyleFor(RoleDefault)})
	}
	return upd
}

// BlurBatch returns the batch Blur would produce without applying it.
func (v *GraphView) BlurBatch() Update {
	return v.blurBatch()
}

// Hover restyles every node and edge for id, applies the batch and returns it.
func (v *GraphView) Hover(id string) (Update, error) {
	defer metrics.Timer(metrics.Hover)()

	upd, err := v.Compute(id)
	if err != nil {
		return Update{}, err
	}
	v.mu.Lock()
	v.hovered = upd.Hovered
	v.apply(upd)
	v.mu.Unlock()

	debug.Log("hover %s: %d nodes, %d edges", id, len(upd.Nodes), len(upd.Edges))
	return upd, nil
}

// Blur resets every node and edge to its default style.
func (v *GraphView) Blur() Update {
	defer metrics.Timer(metrics.Blur)()

	upd := v.blurBatch()
	v.mu.Lock()
	v.hovered = ""
	v.apply(upd)
	v.mu.Unlock()
	return upd
}

// apply merges a batch into the collections. Callers hold v.mu.
func (v *GraphView) apply(upd Update) {
	for _, nu := range upd.Nodes {
		n, ok := v.nodes.Get(nu.ID)
		if !ok {
			continue
		}
		var highlight *ColorPair
		if n.Color != nil {
			highlight = n.Color.Highlight
		}
		n.State = nu.State
		n.NodeStyle = nu.NodeStyle
		if n.Color != nil {
			c := *n.Color
			c.Highlight = highlight
			n.Color = &c
		}
		v.nodes.Update(n)
	}
	for _, eu := range upd.Edges {
		e, ok := v.edges.Get(eu.ID)
		if !ok {
			continue
		}
		highlight := e.Color.Highlight
		e.Role = eu.Role
		e.EdgeStyle = eu.EdgeStyle
		e.Color.Highlight = highlight
		v.edges.Update(e)
	}
}

// Handle dispatches a renderer event.
func (v *GraphView) Handle(ev Event) (Update, error) {
	switch ev.Type {
	case EventHoverNode:
		return v.Hover(ev.Node)
	case EventBlurNode:
		return v.Blur(), nil
	default:
		return Update{}, fmt.Errorf("unsupported event %q", ev.Type)
	}
}
