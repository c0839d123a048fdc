package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"taprush/internal/game"

	"github.com/coder/websocket"
)

// Message types on the play socket.
const (
	MsgStart = "start"
	MsgReset = "reset"
	MsgTap   = "tap"
	MsgState = "state"
	MsgJoin  = "join"
	MsgLeave = "leave"
)

// ClientMessage is the JSON structure received from clients. X and Y are the
// pointer position in playfield percent and are optional on taps.
type ClientMessage struct {
	Type     string   `json:"t"`
	TargetID int      `json:"id,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

// Point returns the pointer position, or nil if the client sent none.
func (m ClientMessage) Point() *game.Point {
	if m.X == nil || m.Y == nil {
		return nil
	}
	return &game.Point{X: *m.X, Y: *m.Y}
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type     string      `json:"t"`
	ClientID string      `json:"id,omitempty"`
	State    *game.State `json:"s,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages the WebSocket connections watching one game session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub and tells the others it joined.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.BroadcastExcept(c.ID, ServerMessage{Type: MsgJoin, ClientID: c.ID})
}

// Unregister removes a client and closes its Send channel, then broadcasts a leave message.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	c, ok := h.clients[clientID]
	if ok {
		close(c.Send)
		delete(h.clients, clientID)
	}
	h.mu.Unlock()

	if ok {
		h.BroadcastExcept(clientID, ServerMessage{
			Type:     MsgLeave,
			ClientID: clientID,
		})
	}
}

// Broadcast sends a message to every client.
func (h *Hub) Broadcast(msg ServerMessage) {
	h.BroadcastExcept("", msg)
}

// BroadcastExcept sends a message to all clients except the sender. Non-blocking: drops if channel full.
func (h *Hub) BroadcastExcept(senderID string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		if id == senderID {
			continue
		}
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
