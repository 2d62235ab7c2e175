package view

import (
	"fmt"

	"github.com/vanderheijden86/pensum/pkg/debug"
)

// EventType names a renderer interaction event.
type EventType string

const (
	EventHoverNode EventType = "hoverNode"
	EventBlurNode  EventType = "blurNode"
)

// Event is an interaction reported by a renderer.
type Event struct {
	Type EventType `json:"type"`
	Node string    `json:"node,omitempty"`
}

// Renderer is the drawing collaborator. It is constructed with the initial
// nodes, edges and options, emits hover and blur events, and accepts style
// batches keyed by id.
type Renderer interface {
	Init(nodes []VisNode, edges []VisEdge, opts Options) error
	On(event EventType, handler func(Event))
	UpdateNodes(updates []NodeUpdate) error
	UpdateEdges(updates []EdgeUpdate) error
}

// Mount constructs r with the view's data and wires its hover and blur
// events back through the view. Each resulting batch is forwarded to r.
func (v *GraphView) Mount(r Renderer) error {
	if err := r.Init(v.InitialNodes(), v.InitialEdges(), v.Options()); err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	forward := func(ev Event) {
		upd, err := v.Handle(ev)
		if err != nil {
			debug.Log("dropping %s event for %q: %v", ev.Type, ev.Node, err)
			return
		}
		if err := r.UpdateNodes(upd.Nodes); err != nil {
			debug.Log("update nodes: %v", err)
			return
		}
		if err := r.UpdateEdges(upd.Edges); err != nil {
			debug.Log("update edges: %v", err)
		}
	}
	r.On(EventHoverNode, forward)
	r.On(EventBlurNode, forward)
	return nil
}
