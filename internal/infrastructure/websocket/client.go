package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gamebit/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is a single websocket connection for a user. One user can
// hold several clients at once (one per device).
type Client struct {
	ID      string
	UserID  string
	conn    *websocket.Conn
	manager *Manager
	send    chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(userID string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:      uuid.New().String(),
		UserID:  userID,
		conn:    conn,
		manager: manager,
		send:    make(chan []byte, sendBuffer),
	}
}

// Send queues a message for delivery. Drops the message when the
// client's buffer is full rather than blocking the caller. Safe to
// call against a client that has already disconnected: a broadcast
// racing Unregister must not hit a closed channel.
func (c *Client) Send(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- message:
	default:
		logger.Warn("Dropping message for slow client %s (user %s)", c.ID, c.UserID)
	}
}

// closeSend shuts the send channel exactly once, under the same lock
// Send holds, so no queueing can land after the close.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump reads inbound frames and passes them to handle until the
// connection drops. Runs on its own goroutine per connection.
func (c *Client) ReadPump(handle func(client *Client, data []byte)) {
	defer func() {
		c.manager.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Websocket read error for user %s: %v", c.UserID, err)
			}
			return
		}
		handle(c, data)
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
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
