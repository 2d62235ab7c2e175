// Package server serves the curriculum graph over HTTP. The page at / drives
// vis-network and forwards hover and blur events over a websocket; each
// connection owns a GraphView that answers with style batches.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/export"
	"github.com/vanderheijden86/pensum/pkg/layout"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/view"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr  string // listen address, default "127.0.0.1:0"
	Title string
	View  view.Config
}

// Server is the live graph server.
type Server struct {
	opts     Options
	router   *mux.Router
	upgrader websocket.Upgrader

	mu         sync.RWMutex
	curriculum *model.Curriculum
	shared     *view.GraphView // read-only; backs the page and the JSON API
	warnings   []layout.Warning
	clients    map[*client]struct{}
}

// New builds a server for c.
func New(c *model.Curriculum, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	s := &Server{
		opts:    opts,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	s.setCurriculum(c)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/graph", s.handleGraph).Methods(http.MethodGet)
	api.HandleFunc("/subjects/{id}", s.handleSubject).Methods(http.MethodGet)
	api.HandleFunc("/subjects/{id}/hover", s.handleHover).Methods(http.MethodGet)
	s.router = r
}

// Handler returns the HTTP handler; useful with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setCurriculum(c *model.Curriculum) {
	v, warnings := view.New(c, s.opts.View)
	for _, w := range warnings {
		debug.Log("server: layout: %s", w)
	}
	s.mu.Lock()
	s.curriculum = c
	s.shared = v
	s.warnings = warnings
	s.mu.Unlock()
}

func (s *Server) snapshot() (*model.Curriculum, *view.GraphView, []layout.Warning) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.curriculum, s.shared, s.warnings
}

// Reload swaps the curriculum, remounts every connected client on a fresh
// view and tells the pages to reload.
func (s *Server) Reload(c *model.Curriculum) {
	s.setCurriculum(c)

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for cl := range s.clients {
		clients = append(clients, cl)
	}
	s.mu.RUnlock()

	for _, cl := range clients {
		if err := cl.remount(c, s.opts.View); err != nil {
			debug.Log("server: remount client: %v", err)
		}
		cl.send(message{Type: msgReload})
	}
	debug.Log("server: reloaded %d subjects for %d clients", len(c.Subjects), len(clients))
}

// ClientCount returns the number of open websocket connections.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return ln, nil
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.closeClients()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled. ready, when non-nil, receives the page URL once bound.
func (s *Server) ListenAndServe(ctx context.Context, ready func(url string)) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	if ready != nil {
		ready("http://" + ln.Addr().String() + "/")
	}
	return s.Serve(ctx, ln)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for cl := range clients {
		cl.close()
	}
}

// --- handlers ----------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, v, _ := s.snapshot()
	var buf bytes.Buffer
	if err := export.WritePage(&buf, v, export.PageOptions{Title: s.opts.Title, Live: true}); err != nil {
		debug.Log("server: write page: %v", err)
		sendError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

type graphResponse struct {
	Career   model.Career    `json:"career"`
	Nodes    []view.VisNode  `json:"nodes"`
	Edges    []view.VisEdge  `json:"edges"`
	Options  view.Options    `json:"options"`
	Warnings []string        `json:"warnings,omitempty"`
	Problems []model.Problem `json:"problems,omitempty"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	c, v, warnings := s.snapshot()
	resp := graphResponse{
		Career:   c.Career,
		Nodes:    v.InitialNodes(),
		Edges:    v.InitialEdges(),
		Options:  v.Options(),
		Problems: c.Problems(),
	}
	for _, wn := range warnings {
		resp.Warnings = append(resp.Warnings, wn.String())
	}
	sendJSON(w, resp)
}

type subjectResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Semester      int      `json:"semester"`
	Credits       int      `json:"credits,omitempty"`
	Prerequisites []string `json:"prerequisites"`
	Ancestors     []string `json:"ancestors"`
	Children      []string `json:"children"`
	Descendants   []string `json:"descendants"`
}

func (s *Server) handleSubject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, v, _ := s.snapshot()
	subj, ok := c.Subject(id)
	if !ok {
		sendError(w, fmt.Errorf("%w: %q", model.ErrUnknownSubject, id), http.StatusNotFound)
		return
	}
	g := v.Analysis()
	sendJSON(w, subjectResponse{
		ID:            subj.ID,
		Name:          subj.Name,
		Semester:      subj.Semester,
		Credits:       subj.Credits,
		Prerequisites: nonNil(subj.Prerequisites),
		Ancestors:     nonNil(g.Ancestors(id).Sorted()),
		Children:      nonNil(g.Children(id).Sorted()),
		Descendants:   nonNil(g.Descendants(id).Sorted()),
	})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	_, v, _ := s.snapshot()
	upd, err := v.Compute(id)
	if err != nil {
		sendError(w, err, http.StatusNotFound)
		return
	}
	sendJSON(w, upd)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Log("server: websocket upgrade: %v", err)
		return
	}

	c, _, _ := s.snapshot()
	cl := newClient(conn)
	if err := cl.remount(c, s.opts.View); err != nil {
		debug.Log("server: mount client: %v", err)
		cl.close()
		return
	}

	s.mu.Lock()
	s.clients[cl] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, cl)
		s.mu.Unlock()
		cl.close()
	}()

	go cl.writeLoop()
	cl.readLoop()
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
