// Package stream broadcasts simulation state to browser clients over
// websockets.
package stream

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Snapshot is the JSON payload pushed to clients after each step.
type Snapshot struct {
	Step     int              `json:"step"`
	Birds    []flock.Bird     `json:"birds"`
	Predator *flock.Bird      `json:"predator,omitempty"`
	Stats    flock.Statistics `json:"stats"`
	Canvas   geometry.Vector2D `json:"canvas"`
}

// NewSnapshot assembles the payload for one step of the engine.
func NewSnapshot(step int, f *flock.Flock) Snapshot {
	s := Snapshot{
		Step:  step,
		Birds: f.Snapshot(),
		Stats: f.ComputeStatistics(),
		Canvas: geometry.Vector2D{
			X: f.Config().CanvasWidth,
			Y: f.Config().CanvasHeight,
		},
	}
	if p, ok := f.Predator(); ok {
		s.Predator = &p
	}
	return s
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// send serializes writes: Broadcast and the per-connection reader may
// both write to the same socket.
func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks connected websocket clients and fans simulation state out
// to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub returns an empty hub. The upgrader accepts any origin since the
// page and the socket may be served from different local ports.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log,
		clients:  make(map[*client]struct{}),
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and keeps the connection registered until
// the client goes away. Incoming messages are drained and ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("client connected", "remote", conn.RemoteAddr().String())

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	conn.Close()
	h.log.Info("client disconnected", "remote", conn.RemoteAddr().String())
}

// Broadcast pushes one snapshot to every connected client, dropping
// clients whose sockets fail.
func (h *Hub) Broadcast(s Snapshot) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.send(s); err != nil {
			h.log.Warn("client send failed, dropping", "error", err)
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
