// Package wsrouter routes typed JSON messages on a websocket connection to
// registered handlers.
package wsrouter

import (
	"context"
	"encoding/json"
)

// Conn is satisfied by any JSON-speaking connection, such as the
// write-serialized wrapper the connection repository hands out.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
}

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn Conn, payload json.RawMessage) error

type Router struct {
	routes map[string]HandlerFunc
}

func New() *Router {
	return &Router{routes: make(map[string]HandlerFunc)}
}

func (r *Router) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// ServeConn reads messages until the connection drops or the context is
// canceled. Handler errors are reported to the client and do not end the
// session; unknown message types get an error reply as well.
func (r *Router) ServeConn(ctx context.Context, conn Conn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Type]
		if !ok {
			conn.WriteJSON(map[string]string{"error": "unknown message type: " + msg.Type})
			continue
		}

		if err := handler(ctx, conn, msg.Payload); err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
		}
	}
}
