package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexvaldes/gigworks-backend/pkg/config"
)

// Conn adapts a websocket connection to the gateway's Sender contract. Sends
// go through a buffered channel drained by a single writer goroutine; a full
// buffer drops the event instead of blocking the broadcaster.
type Conn struct {
	ws           *websocket.Conn
	send         chan Event
	writeTimeout time.Duration
	maxBytes     int64

	mu     sync.Mutex
	closed bool
}

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn, cfg config.RealtimeConfig) *Conn {
	buffer := cfg.SendBufferSize
	if buffer <= 0 {
		buffer = 32
	}
	return &Conn{
		ws:           ws,
		send:         make(chan Event, buffer),
		writeTimeout: cfg.WriteTimeout,
		maxBytes:     cfg.MaxMessageBytes,
	}
}

// Send queues an event for delivery. It reports false when the client is too
// slow and its buffer is full.
func (c *Conn) Send(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Serve runs the connection until the peer goes away: a writer goroutine
// drains the send buffer while the read loop feeds frames to the gateway.
func (c *Conn) Serve(ctx context.Context, gateway *Gateway) {
	if c.maxBytes > 0 {
		c.ws.SetReadLimit(c.maxBytes)
	}

	done := make(chan struct{})
	go c.writePump(done)

	sess := gateway.Connect(c)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			break
		}
		gateway.HandleMessage(ctx, sess, raw)
	}

	gateway.Disconnect(ctx, sess)
	c.close()
	<-done
}

func (c *Conn) writePump(done chan<- struct{}) {
	defer close(done)

	for event := range c.send {
		if c.writeTimeout > 0 {
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		}
		if err := c.ws.WriteJSON(event); err != nil {
			break
		}
	}
	_ = c.ws.Close()
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
