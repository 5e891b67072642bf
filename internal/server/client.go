package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is one connected transcript viewer, pinned to a single task.
type Client struct {
	taskID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan toolcall.Event
}

// NewClient wraps a WebSocket connection subscribed to one task.
func NewClient(hub *Hub, conn *websocket.Conn, taskID string) *Client {
	return &Client{
		taskID: taskID,
		hub:    hub,
		conn:   conn,
		send:   make(chan toolcall.Event, 256),
	}
}

// ReadPump drains the connection until the peer goes away. Viewers do
// not send application messages; reading only services pongs and
// detects disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read error: %v", err)
			}
			return
		}
	}
}

// WritePump pushes events from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				logger.Error("websocket write error: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
