package websocket

import (
	"context"
	"sync"

	"sivec/internal/domain/user"
	"sivec/internal/general/logger"

	"github.com/gorilla/websocket"
)

// client is one dispatcher/admin screen. Writes are serialized per
// connection because gorilla allows only one concurrent writer.
type client struct {
	conn   *websocket.Conn
	branch string
	role   user.Role
	mu     sync.Mutex
}

func (c *client) writeJSON(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub stores all active WebSocket connections keyed by connection ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Add registers a new connection under a unique ID.
func (h *Hub) Add(ctx context.Context, id, branch string, role user.Role, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[id]; ok {
		_ = old.conn.Close()
	}
	h.clients[id] = &client{conn: conn, branch: branch, role: role}
	h.logger.Info(ctx, "ws_registered", "WebSocket client connected", map[string]any{
		"id": id, "sucursal": branch, "role": role.String(),
	})
}

// Remove deletes and closes a connection.
func (h *Hub) Remove(ctx context.Context, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		_ = c.conn.Close()
		delete(h.clients, id)
		h.logger.Info(ctx, "ws_removed", "WebSocket client disconnected", map[string]any{"id": id})
	}
}

// Broadcast sends msg to every screen entitled to the branch: admins see
// all branches, dispatchers only their own. An empty branch reaches everyone.
func (h *Hub) Broadcast(ctx context.Context, branch string, msg any) {
	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		if branch == "" || c.role.IsAdmin() || c.branch == branch {
			targets[id] = c
		}
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.writeJSON(msg); err != nil {
			h.logger.Error(ctx, "ws_send_failed", "Failed to push message to client", err, map[string]any{"id": id})
			h.Remove(ctx, id)
		}
	}
}

// Count returns the number of connected clients (for debugging/admin tools).
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
