package server

import (
	"sync"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

// Hub maintains the set of connected viewers and fans transcript events
// out to the viewers subscribed to each task.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan toolcall.Event
	register   chan *Client
	unregister chan *Client
	log        *logger.Logger
	mu         sync.RWMutex
	quit       chan struct{}
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan toolcall.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logger.Global().WithPrefix("hub"),
		quit:       make(chan struct{}),
	}
}

// Run starts the hub loop. Call in its own goroutine.
func (h *Hub) Run() {
	h.log.Info("event hub started")
	defer h.log.Info("event hub stopped")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("viewer registered for task %s", client.taskID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Debug("viewer unregistered from task %s", client.taskID)

		case ev := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.taskID != ev.TaskID {
					continue
				}
				select {
				case client.send <- ev:
				default:
					// Slow viewer, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			return
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	close(h.quit)
}

// Register registers a new viewer. A no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister unregisters a viewer. A no-op once the hub has stopped,
// so viewers disconnecting during shutdown never block.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast delivers an event to every viewer of its task.
func (h *Hub) Broadcast(ev toolcall.Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("broadcast channel full, dropping event for task %s", ev.TaskID)
	}
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
