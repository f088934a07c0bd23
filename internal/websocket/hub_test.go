package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func TestServeWSSendsConnectedEvent(t *testing.T) {
	hub := NewHub(nopLogger())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dial(t, server)

	event := readEvent(t, conn)
	assert.Equal(t, TypeConnected, event.Type)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, 1, hub.ClientCount())
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nopLogger())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	first := dial(t, server)
	second := dial(t, server)
	readEvent(t, first)
	readEvent(t, second)

	hub.Broadcast(TypeDatasetReloaded)

	assert.Equal(t, TypeDatasetReloaded, readEvent(t, first).Type)
	assert.Equal(t, TypeDatasetReloaded, readEvent(t, second).Type)
}

func TestConcurrentBroadcastsSerializePerConnection(t *testing.T) {
	hub := NewHub(nopLogger())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	first := dial(t, server)
	second := dial(t, server)
	readEvent(t, first)
	readEvent(t, second)

	// Writes to one connection must be serialized even when broadcasts
	// overlap; gorilla panics on concurrent writers.
	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast(TypeDatasetReloaded)
		}()
	}
	wg.Wait()

	for _, conn := range []*websocket.Conn{first, second} {
		for i := 0; i < n; i++ {
			assert.Equal(t, TypeDatasetReloaded, readEvent(t, conn).Type)
		}
	}
	assert.Equal(t, 2, hub.ClientCount(), "no client dropped by a healthy broadcast")
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	hub := NewHub(nopLogger())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dial(t, server)
	readEvent(t, conn)
	require.Equal(t, 1, hub.ClientCount())

	conn.Close()

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 20*time.Millisecond)
}
