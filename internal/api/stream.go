package api

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// Hub holds the set of connected monitoring clients. Unlike the teacher's
// dashboard — many distinct event types, pushed from several producer
// goroutines, needing a buffered broadcast channel and its own run loop to
// serialize access — this monitor only ever has one producer
// (Server.pushSnapshots) emitting one event type on a fixed timer, so
// registering, unregistering, and broadcasting are synchronous operations
// under a single mutex rather than channel sends into a dispatcher
// goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "ws-hub"),
	}
}

// add registers a client for future broadcasts.
func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", "count", n)
}

// remove drops a client and closes its send channel, ending its writePump.
// A no-op if the client was already removed.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("client disconnected", "count", n)
	}
}

// marshalSnapshotEvent is the one wire payload this monitor ever sends,
// shared by the periodic broadcast and by a client's initial push on
// connect so the two can't drift out of shape.
func marshalSnapshotEvent(snapshot Snapshot) ([]byte, error) {
	return json.Marshal(newSnapshotEvent(snapshot))
}

// BroadcastSnapshot marshals one snapshot and fans it out to every
// connected client, dropping it for any client whose send buffer is still
// full from the previous tick rather than blocking the timer on a slow
// reader.
func (h *Hub) BroadcastSnapshot(snapshot Snapshot) {
	data, err := marshalSnapshotEvent(snapshot)
	if err != nil {
		h.logger.Error("failed to marshal snapshot", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping snapshot")
		}
	}
}

// Client is one connected monitoring WebSocket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient registers conn with hub and starts its read/write pumps.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.add(client)

	go client.writePump()
	go client.readPump()

	return client
}

// writePump relays hub broadcasts to the connection and keeps it alive
// with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump exists only to service gorilla's control-frame handling (pong
// replies, close frames) and to notice a dead connection — this monitor
// takes no client->server messages, so any data frame read is discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket error", "error", err)
			}
			return
		}
	}
}
