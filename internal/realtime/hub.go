// Package realtime streams ledger events to connected clients over
// WebSocket. Each user joins a private room after authentication; escrow and
// wallet operations broadcast into the rooms of the parties involved.
// Delivery is best-effort: a slow or absent client never blocks the ledger.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event names pushed to clients
const (
	EventNewNotification = "new_notification"
	EventOrderDelivered  = "order_delivered"
	EventPaymentReleased = "payment_released"
	EventContractUpdated = "contract_updated"
	EventBalanceUpdate   = "balance_update"
)

// UserRoom returns the private room name for a user
func UserRoom(userID uuid.UUID) string {
	return "user_" + userID.String()
}

var normalCloseCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		host := r.Host
		return origin == "http://"+host || origin == "https://"+host
	},
}

// Message is the wire envelope pushed to clients
type Message struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type envelope struct {
	room    string
	payload []byte
}

// Client is one WebSocket connection bound to a room
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	room string
	send chan []byte
}

// MaxClients caps concurrent connections
const MaxClients = 10000

// Hub manages rooms of WebSocket connections
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *zap.Logger
	done       chan struct{}
}

// NewHub creates a new hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("realtime hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			h.logger.Info("realtime hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Debug("client joined room", zap.String("room", client.room))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.rooms[env.room] {
				select {
				case client.send <- env.payload:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					if clients, ok := h.rooms[client.room]; ok {
						if _, ok := clients[client]; ok {
							delete(clients, client)
							close(client.send)
						}
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

// Broadcast pushes an event into a room. Never blocks; if the hub's buffer
// is full the event is dropped and logged.
func (h *Hub) Broadcast(room, event string, data interface{}) {
	payload, err := json.Marshal(Message{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		h.logger.Warn("failed to serialize realtime event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{room: room, payload: payload}:
	default:
		h.logger.Warn("broadcast channel full, dropping event", zap.String("event", event))
	}
}

// BroadcastToUser pushes an event into a user's private room
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) {
	h.Broadcast(UserRoom(userID), event, data)
}

// ConnectedClients reports how many clients are in a room
func (h *Hub) ConnectedClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// HandleWebSocket upgrades the request and joins the user's room. Callers
// authenticate first and pass the verified user ID.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	h.mu.RLock()
	total := 0
	for _, clients := range h.rooms {
		total += len(clients)
	}
	h.mu.RUnlock()
	if total >= MaxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		room: UserRoom(userID),
		send: make(chan []byte, 64),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, normalCloseCodes...) {
				c.hub.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
