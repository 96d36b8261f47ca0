package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/woutervis/wotohe/internal/model"
)

// Message is a real-time update pushed to all connected clients. Board
// messages carry the full merged open+last-done view; completion
// messages announce a single transition.
type Message struct {
	Type        string             `json:"type"`
	Board       []model.BoardEntry `json:"board,omitempty"`
	ChoreType   model.ChoreType    `json:"chore_type,omitempty"`
	CompletedBy string             `json:"completed_by,omitempty"`
}

// BoardMessage wraps a board snapshot for broadcast.
func BoardMessage(entries []model.BoardEntry) Message {
	return Message{Type: "board", Board: entries}
}

// CompletionMessage announces one completed task.
func CompletionMessage(choreType model.ChoreType, completedBy string) Message {
	return Message{Type: "task_completed", ChoreType: choreType, CompletedBy: completedBy}
}

// Hub maintains the set of active WebSocket clients and broadcasts
// messages to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
