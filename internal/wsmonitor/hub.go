// Package wsmonitor broadcasts telemetry samples to connected WebSocket
// clients for live monitoring. This file is a direct port of the
// teacher's internal/ws Hub/Client broadcast core — domain-agnostic
// transport plumbing with nothing to adapt; the telemetry domain only
// enters one layer up, in tap.go and messages.go.
package wsmonitor

import (
	"sync"

	"github.com/gorilla/websocket"

	"powermatcher/internal/logx"
)

// Client represents one connected monitoring WebSocket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub manages connected monitoring clients and broadcasts messages to
// all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast sends a message to every connected client, dropping it for
// any client whose send buffer is full rather than blocking the caller.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			logx.Warnf("wsmonitor: client buffer full, dropping message")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
