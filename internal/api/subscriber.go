package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

// Subscription is a live tool-call stream for one task. The server
// replays the stored transcript first, then delivers events as the
// agent appends them.
type Subscription struct {
	conn      *websocket.Conn
	events    chan toolcall.Event
	done      chan struct{}
	closing   chan struct{}
	closeOnce sync.Once
}

// Subscribe opens the event stream for a task. The returned
// subscription delivers events on Events() until the connection drops
// or Close is called; reconnecting is the caller's decision.
func (c *Client) Subscribe(ctx context.Context, taskID string) (*Subscription, error) {
	wsURL, err := websocketURL(c.baseURL, taskID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to task %s: %w", taskID, err)
	}

	sub := &Subscription{
		conn:    conn,
		events:  make(chan toolcall.Event, 64),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	go sub.readLoop(taskID)
	return sub, nil
}

func websocketURL(baseURL, taskID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/tasks/" + taskID
	return u.String(), nil
}

// Events returns the stream channel. Closed when the subscription ends.
func (s *Subscription) Events() <-chan toolcall.Event {
	return s.events
}

// Done is closed when the read loop has terminated.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close terminates the subscription. Safe to call more than once; the
// read loop exits even if it is parked on a full events channel.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() { close(s.closing) })
	return s.conn.Close()
}

func (s *Subscription) readLoop(taskID string) {
	defer func() {
		close(s.events)
		close(s.done)
		s.conn.Close()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("subscription read error for task %s: %v", taskID, err)
			}
			return
		}

		var ev toolcall.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			logger.Warn("skipping malformed event frame for task %s: %v", taskID, err)
			continue
		}
		if ev.Type != "" && ev.Type != toolcall.EventTypeToolCall {
			// Newer servers may add event types; ignore what we don't know.
			logger.Debug("ignoring event type %q for task %s", ev.Type, taskID)
			continue
		}

		// The consumer may have walked away without draining; a plain
		// send would park this goroutine (and pin the connection)
		// forever once the buffer fills.
		select {
		case s.events <- ev:
		case <-s.closing:
			return
		}
	}
}
