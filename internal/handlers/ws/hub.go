// ===============================
// FILE: internal/handlers/ws/hub.go
// ===============================

package ws

import (
	"context"
	"encoding/json"
	"sync"

	"allowancehub/internal/events"

	"go.uber.org/zap"
)

// hubHandlerID identifies the hub's event bus subscription
const hubHandlerID = "celebration-hub"

// Hub routes badge celebration events to the websocket connections of the
// user they belong to. Events without a user ID are dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}

	bus    events.EventBus
	logger *zap.Logger
}

// envelope is the wire format pushed to clients
type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates the hub and subscribes it to badge events
func NewHub(bus events.EventBus, logger *zap.Logger) (*Hub, error) {
	h := &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		bus:     bus,
		logger:  logger,
	}

	handler := events.EventHandlerFunc{
		ID:   hubHandlerID,
		Func: h.handleEvent,
	}

	for _, eventType := range []string{events.EventTypeBadgeEarned, events.EventTypeAllTasksCompleted} {
		if err := bus.Subscribe(eventType, handler); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// handleEvent forwards one bus event to the owning user's connections
func (h *Hub) handleEvent(_ context.Context, event events.Event) error {
	userID := event.GetUserID()
	if userID == nil {
		return nil
	}

	payload, err := json.Marshal(envelope{Type: event.GetEventType(), Data: event})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[*userID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop the message rather than block the bus
			h.logger.Warn("Dropping celebration message for slow client",
				zap.Int64("user_id", *userID),
			)
		}
	}

	return nil
}

// register adds a client connection for its user
func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}

	h.logger.Debug("Celebration client connected",
		zap.Int64("user_id", client.userID),
		zap.Int("connections", len(h.clients[client.userID])),
	)
}

// unregister removes a client connection
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.userID]; ok {
		if _, ok := conns[client]; ok {
			delete(conns, client)
			close(client.send)
			if len(conns) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}
}

// Close unsubscribes the hub from the event bus
func (h *Hub) Close() {
	for _, eventType := range []string{events.EventTypeBadgeEarned, events.EventTypeAllTasksCompleted} {
		if err := h.bus.Unsubscribe(eventType, hubHandlerID); err != nil {
			h.logger.Debug("Hub unsubscribe failed", zap.Error(err))
		}
	}
}
