// ===============================
// FILE: internal/handlers/ws/client.go
// ===============================

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"allowancehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is same-origin behind the app's reverse proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection for one user. Each connection gets
// its own completion observer so a freshly connected tab seeds its
// baseline from the first sync instead of re-celebrating old badges.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   int64
	observer *services.CompletionObserver
	badges   services.BadgeService
	logger   *zap.Logger
}

// clientMessage is what the browser sends over the socket
type clientMessage struct {
	Type string `json:"type"`
}

// Handler upgrades GET /api/v1/users/{userID}/ws connections
type Handler struct {
	hub               *Hub
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
}

// NewHandler creates a websocket handler backed by the hub
func NewHandler(hub *Hub, serviceCollection *services.ServiceCollection, logger *zap.Logger) *Handler {
	return &Handler{
		hub:               hub,
		serviceCollection: serviceCollection,
		logger:            logger,
	}
}

// ServeWS handles the websocket upgrade
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, 16),
		userID:   userID,
		observer: services.NewCompletionObserver(userID, h.serviceCollection.EventBus, h.logger),
		badges:   h.serviceCollection.BadgeService,
		logger:   h.logger,
	}

	h.hub.register(client)

	go client.writePump()
	go client.readPump()
}

// readPump consumes client messages. A "sync" message makes the client
// fetch the current badge snapshot and feed it through its observer,
// which publishes celebration events for any new completions.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		if msg.Type == "sync" {
			c.syncBadges()
		}
	}
}

// syncBadges diffs the current badge state through the observer
func (c *Client) syncBadges() {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	summary, err := c.badges.GetUserBadges(ctx, c.userID)
	if err != nil {
		c.logger.Warn("Badge sync failed",
			zap.Int64("user_id", c.userID),
			zap.Error(err),
		)
		return
	}

	c.observer.Observe(ctx, summary.Badges)
}

// contextWithTimeout bounds badge fetches triggered by socket messages
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// writePump pushes hub messages and keepalive pings to the browser
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
