package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages from the clients.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mutex sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// Buffered channel of outbound messages.
	send chan []byte

	// Account ID for filtering notifications
	accountID uint
}

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("WebSocket client connected. Account ID: %d", client.accountID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			log.Printf("WebSocket client disconnected. Account ID: %d", client.accountID)

		case message := <-h.broadcast:
			// Full lock: the slow-client branch mutates the client map
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToAccount sends a message to all connections for a specific account
func (h *Hub) BroadcastToAccount(accountID uint, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.accountID == accountID {
			select {
			case client.send <- data:
			default:
				// If the send channel is full or blocked, remove client
				close(client.send)
				delete(h.clients, client)
			}
		}
	}
	h.mutex.Unlock()
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Println("Broadcast channel is full")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeFiberWS handles Fiber websocket connections
func (h *Hub) ServeFiberWS(c *fiberws.Conn, accountID uint) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ServeFiberWS panic for account %d: %v", accountID, r)
		}
	}()

	client := &Client{
		hub:       h,
		send:      make(chan []byte, 256),
		accountID: accountID,
	}

	h.register <- client

	// Start write pump in a goroutine, run read pump in this goroutine so the
	// Fiber connection never crosses goroutines for reads.
	go h.fiberWritePump(client, c)
	h.fiberReadPump(client, c)
}

// fiberWritePump handles writing to Fiber websocket connections
func (h *Hub) fiberWritePump(client *Client, c *fiberws.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fiberWritePump panic for account %d: %v", client.accountID, r)
		}
		h.unregister <- client
		c.Close()
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.WriteMessage(fiberws.CloseMessage, []byte{})
				return
			}

			if err := c.WriteMessage(fiberws.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for account %d: %v", client.accountID, err)
				return
			}

		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(fiberws.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for account %d: %v", client.accountID, err)
				return
			}
		}
	}
}

// fiberReadPump handles reading from Fiber websocket connections
func (h *Hub) fiberReadPump(client *Client, c *fiberws.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fiberReadPump panic for account %d: %v", client.accountID, r)
		}
		h.unregister <- client
		c.Close()
	}()

	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.ReadMessage()
		if err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseAbnormalClosure) {
				log.Printf("WebSocket unexpected close for account %d: %v", client.accountID, err)
			}
			break
		}
		// Server-to-client only; incoming frames are drained for pong handling
	}
}
