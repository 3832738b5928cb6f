// Package ws is the session adapter: it turns a raw websocket into an
// authenticated subscriber of exactly one room hub.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/GonzaloGRomero/Una-nota/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// gameConn owns the socket plus a buffered send queue. TrySend never
// blocks: a full queue reports backpressure and the hub decides the fate
// of the subscriber.
type gameConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newGameConn(ws *websocket.Conn, buffer int) *gameConn {
	return &gameConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *gameConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close stops accepting frames and closes the send queue. The write pump
// drains whatever is already queued (a join_error must reach the wire)
// and then closes the socket, which also unblocks the read pump.
func (c *gameConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
