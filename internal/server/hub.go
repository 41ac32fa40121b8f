package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/textlens/textlens/internal/logger"
	"github.com/textlens/textlens/internal/pipeline"
)

// Hub fans pipeline events out to connected websocket clients. Clients
// register when the browser opens the activity feed and unregister when
// the connection drops.
type Hub struct {
	mu         sync.Mutex
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	log        *logger.Logger
}

// NewHub creates a hub with no connected clients. Call Run to start
// dispatching traffic.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn, 8),
		unregister: make(chan *websocket.Conn, 8),
		log:        log,
	}
}

// Run dispatches registrations and broadcasts until ctx ends, then
// closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.log.Info("websocket client connected, %d active", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.log.Info("websocket client disconnected, %d active", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Warning("websocket write failed, dropping client: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *websocket.Conn) {
	h.register <- client
}

// Unregister removes a client from the hub and closes its connection.
func (h *Hub) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues a message for every connected client. The feed is
// best effort: when the queue is full the message is dropped rather
// than stalling the caller.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
	}
}

// Publish implements pipeline.EventSink by broadcasting the event as a
// JSON text frame. It never blocks the pipeline.
func (h *Hub) Publish(e pipeline.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.Broadcast(msg)
}
