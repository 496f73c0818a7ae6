package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dispatch event types broadcast to connected dashboard clients
const (
	EventBookingAssigned = "booking_assigned"
	EventBookingUpdated  = "booking_updated"
	EventBookingDeleted  = "booking_deleted"
	EventTaskStarted     = "task_started"
	EventTaskCompleted   = "task_completed"
	EventDayStarted      = "day_started"
	EventDayEnded        = "day_ended"
)

// Event is a message sent over the dispatch feed
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userId,omitempty"`
}

// Client represents a connected dashboard or driver-app client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn

	// writeMu serializes writes; gorilla/websocket forbids concurrent
	// writers on one connection.
	writeMu sync.Mutex
}

func (c *Client) send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maintains the set of active clients and broadcasts dispatch events
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister requests. Started once as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok {
				old.Conn.Close()
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
			}
			h.mu.Unlock()
			client.Conn.Close()
		}
	}
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.send(event)
	}
}

// SendToUser sends an event to a specific connected user, if present
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if ok {
		event.UserID = userID.Hex()
		client.send(event)
	}
}
