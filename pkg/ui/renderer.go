package ui

import (
	"fmt"
	"sync"

	"github.com/vanderheijden86/pensum/pkg/view"
)

// Renderer is the terminal drawing collaborator of a GraphView. It keeps the
// latest state of every node and edge; the board reads them when painting.
type Renderer struct {
	mu       sync.Mutex
	nodes    map[string]view.NodeUpdate
	edges    map[string]view.EdgeUpdate
	order    []string // edge ids in layout order
	options  view.Options
	handlers map[view.EventType]func(view.Event)
}

var _ view.Renderer = (*Renderer)(nil)

// NewRenderer returns an empty renderer; GraphView.Mount initializes it.
func NewRenderer() *Renderer {
	return &Renderer{
		nodes:    make(map[string]view.NodeUpdate),
		edges:    make(map[string]view.EdgeUpdate),
		handlers: make(map[view.EventType]func(view.Event)),
	}
}

func (r *Renderer) Init(nodes []view.VisNode, edges []view.VisEdge, opts view.Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = make(map[string]view.NodeUpdate, len(nodes))
	r.edges = make(map[string]view.EdgeUpdate, len(edges))
	r.order = r.order[:0]
	for _, n := range nodes {
		r.nodes[n.ID] = view.NodeUpdate{ID: n.ID, State: n.State, NodeStyle: n.NodeStyle}
	}
	for _, e := range edges {
		r.edges[e.ID] = view.EdgeUpdate{ID: e.ID, Role: e.Role, EdgeStyle: e.EdgeStyle}
		r.order = append(r.order, e.ID)
	}
	r.options = opts
	return nil
}

// On replaces the handler for event.
func (r *Renderer) On(event view.EventType, handler func(view.Event)) {
	r.mu.Lock()
	r.handlers[event] = handler
	r.mu.Unlock()
}

func (r *Renderer) UpdateNodes(updates []view.NodeUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		if _, ok := r.nodes[u.ID]; !ok {
			return fmt.Errorf("update for unknown node %q", u.ID)
		}
		r.nodes[u.ID] = u
	}
	return nil
}

func (r *Renderer) UpdateEdges(updates []view.EdgeUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		if _, ok := r.edges[u.ID]; !ok {
			return fmt.Errorf("update for unknown edge %q", u.ID)
		}
		r.edges[u.ID] = u
	}
	return nil
}

// Emit delivers ev to the registered handler, as a pointer move would.
func (r *Renderer) Emit(ev view.Event) {
	r.mu.Lock()
	h := r.handlers[ev.Type]
	r.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

// NodeState returns the current state of node id.
func (r *Renderer) NodeState(id string) view.NodeState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodes[id].State
}

// EdgeRole returns the current role of edge id.
func (r *Renderer) EdgeRole(id string) view.EdgeRole {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edges[id].Role
}

// Groups returns the number of semester groups the renderer was built with.
func (r *Renderer) Groups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.options.Groups)
}

// Edges returns the current edge updates in layout order.
func (r *Renderer) Edges() []view.EdgeUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]view.EdgeUpdate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.edges[id])
	}
	return out
}
