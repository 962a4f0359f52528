package websocket

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Timing controls keepalive of a client connection. PingPeriod must be
// shorter than PongWait.
type Timing struct {
	PingPeriod time.Duration
	PongWait   time.Duration
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub         *Hub
	conn        Connection
	send        chan []byte
	timing      Timing
	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	logger      *slog.Logger
}

// NewClient wraps conn for hub. traceID ties the client's log lines to the
// request that opened it.
func NewClient(hub *Hub, conn Connection, timing Timing, traceID string) *Client {
	id := uuid.NewString()
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		timing:      timing,
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: hub.logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id)),
	}
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// ReadPump drains incoming frames until the peer goes away, then
// unregisters the client. Clients never send commands; reads only keep the
// pong deadline moving.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timing.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.timing.PongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump sends queued frames and periodic pings until the hub closes
// the send channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.timing.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.DebugContext(c.context(), "write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "ping failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
