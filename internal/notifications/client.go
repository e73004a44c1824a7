package notifications

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"moim/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client wraps a single websocket connection registered with the Hub.
// Writes go through the send channel so a slow reader never blocks the
// code producing notifications.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID uint
	send   chan []byte
	closed chan struct{}
}

// NewClient returns a client bound to hub; the caller is expected to run
// ReadPump and WritePump after registering.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// TrySend queues data for delivery without blocking. When the client's
// buffer is full the message is dropped and counted.
func (c *Client) TrySend(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "buffer_full").Inc()
		return false
	}
}

// ReadPump drains inbound frames so ping/pong keeps working; inbound
// payloads are ignored, the notification socket is one-way.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		close(c.closed)
		if err := c.Conn.Close(); err != nil {
			log.Printf("websocket close for user %d: %v", c.UserID, err)
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for user %d: %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump delivers queued messages and keeps the connection alive with
// periodic pings. Runs on the handler goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.Hub.shutdown:
			return
		case <-c.closed:
			return
		}
	}
}
