package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
	"github.com/vanderheijden86/pensum/pkg/view"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(testutil.MathCurriculum(), Options{Title: "Engineering", View: view.DefaultConfig()})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, status int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestIndex_ServesLivePage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var sb strings.Builder
	_, err = io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	body := sb.String()
	require.Contains(t, body, "<title>Engineering</title>")
	require.Contains(t, body, `"live":true`)
	require.NotContains(t, body, `"hover":`)
}

func TestAPIGraph(t *testing.T) {
	_, ts := newTestServer(t)

	var got graphResponse
	getJSON(t, ts.URL+"/api/graph", http.StatusOK, &got)
	require.Equal(t, "Engineering", got.Career.Name)
	require.Len(t, got.Nodes, 7)
	require.Len(t, got.Edges, 2)
	require.True(t, got.Options.Interaction.Hover)
	require.Empty(t, got.Problems)
}

func TestAPISubject(t *testing.T) {
	_, ts := newTestServer(t)

	var got subjectResponse
	getJSON(t, ts.URL+"/api/subjects/Math3", http.StatusOK, &got)
	require.Equal(t, "Mathematics III", got.Name)
	require.Equal(t, []string{"Math1", "Math2"}, got.Ancestors)
	require.Empty(t, got.Children)

	getJSON(t, ts.URL+"/api/subjects/Math1", http.StatusOK, &got)
	require.Equal(t, []string{"Math2"}, got.Children)
	require.Equal(t, []string{"Math2", "Math3"}, got.Descendants)

	var e errorResponse
	getJSON(t, ts.URL+"/api/subjects/Nope", http.StatusNotFound, &e)
	require.Contains(t, e.Error, "unknown subject")
}

func TestAPIHover(t *testing.T) {
	_, ts := newTestServer(t)

	var upd view.Update
	getJSON(t, ts.URL+"/api/subjects/Math2/hover", http.StatusOK, &upd)
	require.Equal(t, "Math2", upd.Hovered)
	require.Len(t, upd.Nodes, 7)

	var e errorResponse
	getJSON(t, ts.URL+"/api/subjects/Nope/hover", http.StatusNotFound, &e)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m message
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev view.Event) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestWebSocket_HoverAndBlur(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	first := readMessage(t, conn)
	require.Equal(t, msgInit, first.Type)
	require.Equal(t, 7, first.Counts.Nodes)
	require.Equal(t, 2, first.Counts.Edges)
	require.Equal(t, 3, first.Counts.Groups)

	sendEvent(t, conn, view.Event{Type: view.EventHoverNode, Node: "Math2"})
	upd := readMessage(t, conn)
	require.Equal(t, msgUpdate, upd.Type)
	require.Equal(t, "Math2", upd.Hovered)
	require.Len(t, upd.Nodes, 7)
	require.Len(t, upd.Edges, 2)
	states := map[string]view.NodeState{}
	for _, n := range upd.Nodes {
		states[n.ID] = n.State
	}
	require.Equal(t, view.StateAncestor, states["Math1"])
	require.Equal(t, view.StateChild, states["Math3"])
	require.Equal(t, view.StateFaded, states["Physics1"])

	sendEvent(t, conn, view.Event{Type: view.EventBlurNode})
	blur := readMessage(t, conn)
	require.Equal(t, msgUpdate, blur.Type)
	require.Empty(t, blur.Hovered)
	for _, n := range blur.Nodes {
		require.Equal(t, view.StateDefault, n.State, n.ID)
	}
	for _, e := range blur.Edges {
		require.Equal(t, view.RoleDefault, e.Role, e.ID)
	}
}

func TestWebSocket_Errors(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn) // init

	sendEvent(t, conn, view.Event{Type: view.EventHoverNode, Node: "Nope"})
	m := readMessage(t, conn)
	require.Equal(t, msgError, m.Type)
	require.Contains(t, m.Error, "unknown node")

	sendEvent(t, conn, view.Event{Type: "click", Node: "Math1"})
	m = readMessage(t, conn)
	require.Equal(t, msgError, m.Type)
	require.Contains(t, m.Error, "unsupported event")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	m = readMessage(t, conn)
	require.Equal(t, msgError, m.Type)
}

func TestReload_BroadcastsAndRemounts(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn) // init

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	c := testutil.MathCurriculum()
	c.Subjects["Math4"] = model.Subject{ID: "Math4", Name: "Mathematics IV", Semester: 3, Prerequisites: []string{"Math2"}}
	s.Reload(c)

	first := readMessage(t, conn)
	require.Equal(t, msgInit, first.Type)
	require.Equal(t, 8, first.Counts.Nodes)
	require.Equal(t, msgReload, readMessage(t, conn).Type)

	sendEvent(t, conn, view.Event{Type: view.EventHoverNode, Node: "Math4"})
	upd := readMessage(t, conn)
	require.Equal(t, "Math4", upd.Hovered)

	var got subjectResponse
	getJSON(t, ts.URL+"/api/subjects/Math2", http.StatusOK, &got)
	require.Equal(t, []string{"Math3", "Math4"}, got.Children)
}

func TestListenAndServe_GracefulShutdown(t *testing.T) {
	s := New(testutil.MathCurriculum(), Options{View: view.DefaultConfig()})
	ctx, cancel := context.WithCancel(context.Background())

	urls := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe(ctx, func(url string) { urls <- url })
	}()

	var url string
	select {
	case url = <-urls:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	require.True(t, strings.HasPrefix(url, "http://127.0.0.1:"))

	resp, err := http.Get(url + "api/graph")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
