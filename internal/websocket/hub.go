// Package websocket pushes dataset lifecycle events to open dashboard
// pages. The only event today is dataset_reloaded, emitted after the
// store picks up an atomically replaced artifact; the page reacts by
// refetching the aggregates it displays.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to dashboard clients.
const (
	TypeConnected       = "connected"
	TypeDatasetReloaded = "dataset_reloaded"
)

// Event is the wire format of a hub message.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

const writeWait = 10 * time.Second

// client is one subscribed connection. The mutex is per connection:
// gorilla permits only one concurrent writer per connection, and a
// wider lock would let one slow client stall broadcasts to the rest.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains the set of connected dashboard clients and broadcasts
// events to all of them. Connections are write-only from the server's
// perspective; a client that stops reading is dropped.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger.With(slog.String("component", "websocket_hub")),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The hub is broadcast-only and carries no data, so origin
			// checks are relaxed for locally hosted dashboards.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.InfoContext(r.Context(), "dashboard client connected",
		slog.Int("clients", count))

	if err := c.send(Event{Type: TypeConnected, Timestamp: time.Now()}); err != nil {
		h.drop(c)
		return
	}

	// Drain reads so pings/pongs and close frames are processed; drop
	// the client when the read side fails.
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends an event to every connected client. A client whose
// write fails is dropped without affecting delivery to the others.
func (h *Hub) Broadcast(eventType string) {
	event := Event{Type: eventType, Timestamp: time.Now()}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(event); err != nil {
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
	h.clients = make(map[*client]struct{})
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	c.conn.Close()
}
