package control

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	mu      sync.Mutex
	colors  []any
	reloads int
	loaded  bool
	reload  error
}

func (f *fakeTarget) ChangeColor(value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors = append(f.colors, value)
}

func (f *fakeTarget) Status() engine.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := "pending"
	if f.loaded {
		state = "succeeded"
	}
	return engine.Status{Loaded: f.loaded, State: state, URL: "models/CHAIR.glb"}
}

func (f *fakeTarget) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reload
}

func (f *fakeTarget) received() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.colors...)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestIndexServesPage(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeTarget{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "changeColor")
}

func TestPostColor(t *testing.T) {
	target := &fakeTarget{}
	srv := httptest.NewServer(NewServer(target).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/color", "application/json", strings.NewReader(`{"value":"#00ff00"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/color", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/color", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, []any{"#00ff00"}, target.received())
}

func TestWebSocketColorAndStatus(t *testing.T) {
	target := &fakeTarget{loaded: true}
	s := NewServer(target)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageColor, Value: "red"}))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MessageStatus, reply.Type)
	assert.True(t, reply.Loaded)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageColor, Value: 0x00ff00}))
	require.NoError(t, conn.ReadJSON(&reply))

	// JSON numbers arrive as float64.
	assert.Equal(t, []any{"red", float64(0x00ff00)}, target.received())

	require.NoError(t, conn.WriteJSON(Message{Type: MessageStatus}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "succeeded", reply.State)
	assert.Equal(t, "models/CHAIR.glb", reply.URL)
	assert.Equal(t, 1, s.Clients())
}

func TestWebSocketErrors(t *testing.T) {
	target := &fakeTarget{reload: errors.New("no model requested")}
	srv := httptest.NewServer(NewServer(target).Handler())
	defer srv.Close()

	conn := dial(t, srv)

	var reply Reply
	require.NoError(t, conn.WriteJSON(Message{Type: "spin"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MessageError, reply.Type)
	assert.Contains(t, reply.Error, "spin")

	require.NoError(t, conn.WriteJSON(Message{Type: MessageColor}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "missing value", reply.Error)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageReload}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "no model requested", reply.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "invalid message", reply.Error)

	assert.Empty(t, target.received())
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	target := &fakeTarget{}
	s := NewServer(target)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	require.Eventually(t, func() bool { return s.Clients() == 2 }, 5*time.Second, 5*time.Millisecond)

	s.Broadcast()
	for _, conn := range []*websocket.Conn{a, b} {
		var reply Reply
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, MessageStatus, reply.Type)
		assert.Equal(t, "pending", reply.State)
	}

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 5*time.Second, 5*time.Millisecond)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := NewServer(&fakeTarget{}, WithAddr(addr))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/status")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
