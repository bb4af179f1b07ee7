package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/cantorhq/cantor/internal/model"
)

// Hub tracks open websocket connections by connection id and fans events out
// to them. It implements the coordinator's Sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	logger  *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// Unregister removes a client from the hub and closes its outbound queue.
// The queue is only ever closed here, under the write lock: Send holds the
// read lock across its queue write, so every in-flight send is ordered
// before the close.
func (h *Hub) Unregister(id model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(client.send)
}

// Send marshals an event onto one connection's outbound queue. A connection
// that cannot keep up has the event dropped rather than stalling the loop;
// the next room snapshot brings it back in sync.
func (h *Hub) Send(conn model.ConnID, ev model.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("event marshal failed",
			slog.String("type", string(ev.Type)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[conn]
	if !ok {
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Warn("send queue full, dropping event",
			slog.String("conn", string(conn)),
			slog.String("type", string(ev.Type)))
	}
}

// Len reports the number of registered connections
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
