// Package connection tracks which websocket belongs to which user and wraps
// sockets so that concurrent writers do not interleave frames.
package connection

import "sync"

// WS is the subset of *websocket.Conn the room session layer needs. Tests
// substitute fakes for it.
type WS interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Conn serializes writes to the underlying socket. gorilla/websocket allows
// at most one concurrent writer, but broadcasts from other sessions and error
// replies from the reader loop can race on the same socket.
type Conn struct {
	ws WS
	mu sync.Mutex
}

func NewConn(ws WS) *Conn {
	return &Conn{ws: ws}
}

// ReadJSON is not guarded: there is exactly one reader per connection.
func (c *Conn) ReadJSON(v any) error {
	return c.ws.ReadJSON(v)
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws.WriteJSON(v)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
