package server

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Connection wraps a websocket with deadlines, a write lock and counters.
type Connection struct {
	id          string
	conn        *websocket.Conn
	cfg         Config
	connectedAt time.Time
	closed      atomic.Bool

	lastActivity     atomic.Int64 // unix nanos
	messagesSent     atomic.Uint64
	messagesReceived atomic.Uint64
	bytesSent        atomic.Uint64
	bytesReceived    atomic.Uint64

	writeMu sync.Mutex
}

func newConnection(conn *websocket.Conn, cfg Config) *Connection {
	now := time.Now()
	c := &Connection{
		id:          uuid.NewString(),
		conn:        conn,
		cfg:         cfg,
		connectedAt: now,
	}
	c.lastActivity.Store(now.UnixNano())
	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	_ = conn.SetReadDeadline(now.Add(cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		c.touch()
		return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})
	return c
}

func (c *Connection) ID() string           { return c.id }
func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }
func (c *Connection) IsClosed() bool       { return c.closed.Load() }

func (c *Connection) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// Send writes a binary message.
func (c *Connection) Send(data []byte) error {
	return c.write(websocket.BinaryMessage, data)
}

// SendText writes a text message.
func (c *Connection) SendText(data []byte) error {
	return c.write(websocket.TextMessage, data)
}

func (c *Connection) write(kind int, data []byte) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := c.conn.WriteMessage(kind, data); err != nil {
		return errors.Wrap(err, "failed to write message")
	}

	c.messagesSent.Add(1)
	c.bytesSent.Add(uint64(len(data)))
	c.touch()
	return nil
}

// Ping sends a ping control frame.
func (c *Connection) Ping() error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}
	deadline := time.Now().Add(c.cfg.WriteTimeout)
	return errors.Wrap(c.conn.WriteControl(websocket.PingMessage, nil, deadline), "failed to write ping")
}

// Receive reads the next data message, extending the read deadline.
func (c *Connection) Receive() ([]byte, error) {
	if c.IsClosed() {
		return nil, ErrConnectionClosed
	}

	kind, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message")
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))

	if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
		return nil, ErrUnsupportedFrame
	}

	c.messagesReceived.Add(1)
	c.bytesReceived.Add(uint64(len(data)))
	c.touch()
	return data, nil
}

// Close sends a normal close frame and closes the socket. Repeated calls are no-ops.
func (c *Connection) Close(reason string) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

// Stats is a point-in-time copy of the connection counters.
type Stats struct {
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64
	Uptime           time.Duration
}

func (c *Connection) Stats() Stats {
	return Stats{
		MessagesSent:     c.messagesSent.Load(),
		MessagesReceived: c.messagesReceived.Load(),
		BytesSent:        c.bytesSent.Load(),
		BytesReceived:    c.bytesReceived.Load(),
		Uptime:           time.Since(c.connectedAt),
	}
}

func (c *Connection) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// isExpectedClose reports read errors that are a normal end of a session.
func isExpectedClose(err error) bool {
	cause := errors.Cause(err)
	return websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
		errors.Is(err, net.ErrClosed)
}
