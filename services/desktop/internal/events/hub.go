// Package events pushes supervisor state transitions to the desktop
// frontend over a websocket feed. The frontend uses the first "ready" frame
// to decide when to reveal the window.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	helpers "github.com/caw-hq/caw-desktop/pkg/shared"
	"github.com/caw-hq/caw-desktop/pkg/shared/defs"
)

var upgrader = websocket.Upgrader{
	// The control listener is loopback-only; ignore Origin header
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn     *websocket.Conn
	sendChan chan []byte
}

// Hub fans state events out to connected clients. Slow clients get frames
// dropped rather than stalling the supervisor's notify path.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Publish broadcasts one state event to every connected client.
func (h *Hub) Publish(e defs.StateEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal state event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.sendChan <- data:
		default:
			slog.Warn("Dropping state event for slow client")
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.sendChan)
	}
}

// ServeHTTP upgrades the request and streams state frames until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}
	slog.Debug("Events client connected", "remote", r.RemoteAddr)

	c := &client{
		conn:     conn,
		sendChan: make(chan []byte, 100),
	}
	h.add(c)

	go sendHandler(c.sendChan, conn)

	// Reader loop: only PING text frames are meaningful; everything else
	// is ignored until the connection drops. Pongs go through the send
	// channel so sendHandler stays the connection's only writer.
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		if messageType == websocket.TextMessage && string(message) == "PING" {
			select {
			case c.sendChan <- []byte("PONG"):
			default:
				slog.Warn("Dropping pong for slow client")
			}
			continue
		}
	}

	h.remove(c)
	helpers.CloseOrLog(conn)
	slog.Debug("Events client disconnected", "remote", r.RemoteAddr)
}

func sendHandler(sendChan <-chan []byte, conn *websocket.Conn) {
	for data := range sendChan {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("Failed to write event frame", "error", err)
			return
		}
	}
}
