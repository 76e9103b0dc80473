package ws

import (
	"encoding/json"
	"sync"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
)

// Hub раздает платежные события по открытым соединениям.
// У пользователя может быть несколько вкладок, событие уходит во все.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// SendToUser отправляет событие всем соединениям пользователя.
// Забитый канал клиента означает потерю уведомления, не блокировку хаба.
func (h *Hub) SendToUser(userID string, ev domain.PaymentEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- payload:
		default:
			logger.Warn("ws: client send buffer full, event dropped", "user_id", userID)
		}
	}
}
