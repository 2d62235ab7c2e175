package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/view"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
	maxMessageSize = 4096
)

type messageType string

const (
	msgInit   messageType = "init"
	msgUpdate messageType = "update"
	msgReload messageType = "reload"
	msgError  messageType = "error"
)

// message is the outbound websocket frame.
type message struct {
	Type    messageType       `json:"type"`
	Nodes   []view.NodeUpdate `json:"nodes,omitempty"`
	Edges   []view.EdgeUpdate `json:"edges,omitempty"`
	Error   string            `json:"error,omitempty"`
	Hovered string            `json:"hovered,omitempty"`
	Counts  *initCounts       `json:"counts,omitempty"`
}

type initCounts struct {
	Nodes  int `json:"nodes"`
	Edges  int `json:"edges"`
	Groups int `json:"groups"`
}

// client is one websocket connection. It implements view.Renderer: node
// updates are held until the matching edge updates arrive so a hover goes
// out as a single frame.
type client struct {
	conn *websocket.Conn
	out  chan message

	mu       sync.Mutex
	view     *view.GraphView
	handlers map[view.EventType]func(view.Event)
	pending  []view.NodeUpdate

	closeOnce sync.Once
	done      chan struct{}
}

var _ view.Renderer = (*client)(nil)

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:     conn,
		out:      make(chan message, sendBufferSize),
		handlers: make(map[view.EventType]func(view.Event)),
		done:     make(chan struct{}),
	}
}

// remount builds a fresh view for c and mounts it on the client.
func (cl *client) remount(c *model.Curriculum, cfg view.Config) error {
	v, _ := view.New(c, cfg)
	cl.mu.Lock()
	cl.view = v
	cl.pending = nil
	cl.mu.Unlock()
	return v.Mount(cl)
}

func (cl *client) Init(nodes []view.VisNode, edges []view.VisEdge, opts view.Options) error {
	cl.send(message{Type: msgInit, Counts: &initCounts{Nodes: len(nodes), Edges: len(edges), Groups: len(opts.Groups)}})
	return nil
}

// On replaces the handler for event.
func (cl *client) On(event view.EventType, handler func(view.Event)) {
	cl.mu.Lock()
	cl.handlers[event] = handler
	cl.mu.Unlock()
}

func (cl *client) UpdateNodes(updates []view.NodeUpdate) error {
	cl.mu.Lock()
	cl.pending = updates
	cl.mu.Unlock()
	return nil
}

func (cl *client) UpdateEdges(updates []view.EdgeUpdate) error {
	cl.mu.Lock()
	nodes := cl.pending
	cl.pending = nil
	hovered := ""
	if cl.view != nil {
		hovered = cl.view.Hovered()
	}
	cl.mu.Unlock()
	if !cl.send(message{Type: msgUpdate, Nodes: nodes, Edges: updates, Hovered: hovered}) {
		return fmt.Errorf("client closed")
	}
	return nil
}

// send queues m without blocking; a client that cannot keep up is dropped.
func (cl *client) send(m message) bool {
	select {
	case <-cl.done:
		return false
	default:
	}
	select {
	case cl.out <- m:
		return true
	default:
		debug.Log("server: client send buffer full, closing")
		cl.close()
		return false
	}
}

func (cl *client) readLoop() {
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				debug.Log("server: websocket read: %v", err)
			}
			return
		}
		var ev view.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			cl.send(message{Type: msgError, Error: fmt.Sprintf("malformed event: %v", err)})
			continue
		}
		cl.dispatch(ev)
	}
}

func (cl *client) dispatch(ev view.Event) {
	cl.mu.Lock()
	h, ok := cl.handlers[ev.Type]
	v := cl.view
	cl.mu.Unlock()
	if !ok {
		cl.send(message{Type: msgError, Error: fmt.Sprintf("unsupported event %q", ev.Type)})
		return
	}
	if ev.Type == view.EventHoverNode {
		if _, err := v.Compute(ev.Node); err != nil {
			cl.send(message{Type: msgError, Error: err.Error()})
			return
		}
	}
	h(ev)
}

func (cl *client) writeLoop() {
	for {
		select {
		case <-cl.done:
			return
		case m := <-cl.out:
			data, err := json.Marshal(m)
			if err != nil {
				debug.Log("server: encode %s: %v", m.Type, err)
				continue
			}
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				debug.Log("server: websocket write: %v", err)
				cl.close()
				return
			}
		}
	}
}

func (cl *client) close() {
	cl.closeOnce.Do(func() {
		close(cl.done)
		_ = cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		cl.conn.Close()
	})
}
