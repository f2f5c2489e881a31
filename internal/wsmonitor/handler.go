package wsmonitor

import (
	"net/http"

	"github.com/gorilla/websocket"

	"powermatcher/internal/logx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP connections to WebSocket and registers them with
// a Hub as passive monitoring clients.
type Handler struct {
	hub *Hub
}

// NewHandler constructs a Handler serving clients of hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Errorf("wsmonitor: upgrade error: %v", err)
		return
	}

	client := &Client{hub: h.hub, conn: conn, send: make(chan []byte, 256)}
	h.hub.Register(client)
	go client.writePump()

	h.readPump(client)
}

// readPump blocks reading (and discarding) client frames purely to
// detect disconnects — this is a one-way feed, so no inbound message is
// ever acted on.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logx.Warnf("wsmonitor: read error: %v", err)
			}
			return
		}
	}
}
