package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the part of a websocket connection the client pumps use.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

type connWrapper struct {
	*websocket.Conn
}

// Wrap adapts a gorilla connection to Connection.
func Wrap(conn *websocket.Conn) Connection {
	return connWrapper{Conn: conn}
}

func (c connWrapper) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
