package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTCPSubscriberReceivesEvents(t *testing.T) {
	hub := NewHub(nil)
	srv := NewServer("127.0.0.1:0", hub, nil)
	require.NoError(t, srv.Listen())
	go func() { _ = srv.Run() }()
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.ListenAddr().String())
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	r := bufio.NewReader(conn)
	welcome, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, welcome, `"welcome"`)

	waitFor(t, func() bool { return hub.Stats().TCPClients == 1 })

	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	hub.BroadcastJSON(CollectionEvent{Type: CollectionSynced, User: "Domonation", Size: 5, Games: 5, Source: "remote", At: at})

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	var got CollectionEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(line)), &got))
	assert.Equal(t, "Domonation", got.User)
	assert.Equal(t, CollectionSynced, got.Type)
	assert.True(t, at.Equal(got.At))
}

func TestServerCloseStopsRun(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewHub(nil), nil)
	require.NoError(t, srv.Listen())

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	require.NoError(t, srv.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestWebSocketSubscriberReceivesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	router := gin.New()
	router.GET("/ws", WSHandler(hub))
	srv := httptest.NewServer(router)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, welcome, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(welcome), "websocket")

	waitFor(t, func() bool { return hub.Stats().WSClients == 1 })
	hub.BroadcastJSON(GameEvent{Type: GameCached, GameID: "13", Outcome: "created"})

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	var got GameEvent
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "13", got.GameID)
	assert.Equal(t, "created", got.Outcome)
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil)
	assert.NotPanics(t, func() { hub.BroadcastJSON(map[string]string{"type": "noop"}) })
	assert.Zero(t, hub.Count())
}
