package fanout

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/korobprog/supermock-app-sub000/internal/realtime"
)

// Client wraps one fan-out WebSocket connection.
type Client struct {
	Conn *websocket.Conn
	mu   sync.Mutex
	hook func(realtime.SessionEvent)
}

func NewClient(conn *websocket.Conn) *Client { return &Client{Conn: conn} }

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(realtime.SessionEvent)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(ev realtime.SessionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(ev)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(ev)
}
