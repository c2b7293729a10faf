package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWSWelcome(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := NewServer(hub, nil, context.Background())

	conn, cleanup := dialTestServer(t, srv)
	defer cleanup()

	msg := readJSON(t, conn)
	assert.Equal(t, "welcome", msg["type"])
}

func TestHubBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := NewServer(hub, nil, context.Background())

	conn, cleanup := dialTestServer(t, srv)
	defer cleanup()

	readJSON(t, conn) // welcome

	hub.broadcast <- []byte(`{"type":"declaration.created"}`)

	msg := readJSON(t, conn)
	assert.Equal(t, "declaration.created", msg["type"])
}

func TestHandleEventsWithoutRedisBroadcastsLocally(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := NewServer(hub, nil, context.Background())

	conn, cleanup := dialTestServer(t, srv)
	defer cleanup()
	readJSON(t, conn) // welcome

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/events", "application/json",
		strings.NewReader(`{"type":"shelf.updated"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	msg := readJSON(t, conn)
	assert.Equal(t, "shelf.updated", msg["type"])
}

func TestHandleEventsRejectsBadJSON(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := NewServer(hub, nil, context.Background())

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/events", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	hub := NewHub()
	srv := NewServer(hub, nil, context.Background())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
