// Package client is a Go SDK for feeding hand samples into an arena server
// and watching the frames it broadcasts.
package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/protocol"
)

// Client is an input-source connection to the arena server.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	connected atomic.Bool
	closed    atomic.Bool
	pending   atomic.Bool
	controlMu sync.Mutex
	replies   chan reply
	done      chan struct{}

	eventHandlers map[EventType][]EventHandler
	handlerMutex  sync.RWMutex

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
}

type Config struct {
	// ServerURL is the base URL of the server, e.g. ws://127.0.0.1:8080.
	ServerURL      string
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	LogLevel       log.Level
}

func DefaultClientConfig() Config {
	return Config{
		ServerURL:      "ws://127.0.0.1:8080",
		ConnectTimeout: 10 * time.Second,
		WriteTimeout:   5 * time.Second,
		LogLevel:       log.LevelInfo,
	}
}

// EventHandler receives connection lifecycle events.
type EventHandler func(event Event)

type EventType string

const (
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Error     error
}

type reply struct {
	ack protocol.Ack
	err error
}

func NewClient(config Config) *Client {
	return NewClientWithLogger(config, log.New(config.LogLevel))
}

func NewClientWithLogger(config Config, logger log.Log) *Client {
	return &Client{
		replies:       make(chan reply, 1),
		done:          make(chan struct{}),
		eventHandlers: make(map[EventType][]EventHandler),
		config:        config,
		logger:        logger.With(log.String("component", "client")),
	}
}

// Connect dials the input socket. Only one input source may be connected to
// a server at a time; a second one gets ErrInputBusy.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if c.connected.Load() {
		return ErrAlreadyConnected
	}
	url, err := endpoint(c.config.ServerURL, "/ws/input")
	if err != nil {
		return err
	}

	c.logger.Info("Connecting to server", log.String("url", url))
	dialer := websocket.Dialer{HandshakeTimeout: c.config.ConnectTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return ErrInputBusy
		}
		c.logger.Error("Failed to connect to server", log.String("url", url), log.Error(err))
		return errors.Wrap(err, "dial input socket")
	}

	c.conn = conn
	c.connected.Store(true)
	c.workerGroup.Add(1)
	go c.readLoop()

	c.logger.Info("Connected to server", log.String("remote_addr", conn.RemoteAddr().String()))
	c.emitEvent(Event{Type: EventTypeConnected, Timestamp: time.Now()})
	return nil
}

// SendSample forwards one normalized pointer reading.
func (c *Client) SendSample(x, y float64, gesture string) error {
	return c.send(protocol.TypeSample, protocol.Sample{X: x, Y: y, Gesture: gesture})
}

// HandLost reports that the tracker no longer sees a hand.
func (c *Client) HandLost() error {
	return c.send(protocol.TypeHandLost, nil)
}

// Control sends a lifecycle action and waits for the server's acknowledgement.
func (c *Client) Control(ctx context.Context, action string, speed float64) (protocol.Ack, error) {
	c.controlMu.Lock()
	defer c.controlMu.Unlock()

	// Drain a reply left behind by an earlier canceled call.
	select {
	case <-c.replies:
	default:
	}
	c.pending.Store(true)
	defer c.pending.Store(false)

	if err := c.send(protocol.TypeControl, protocol.Control{Action: action, Speed: speed}); err != nil {
		return protocol.Ack{}, err
	}
	select {
	case r := <-c.replies:
		return r.ack, r.err
	case <-c.done:
		return protocol.Ack{}, ErrNotConnected
	case <-ctx.Done():
		return protocol.Ack{}, ctx.Err()
	}
}

func (c *Client) send(t protocol.MessageType, payload any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if !c.connected.Load() {
		return ErrNotConnected
	}
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.config.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	if err = c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, "write message")
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.workerGroup.Done()
	defer func() {
		c.connected.Store(false)
		close(c.done)
		c.emitEvent(Event{Type: EventTypeDisconnected, Timestamp: time.Now()})
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !c.closed.Load() {
				c.logger.Debug("Read loop ended", log.Error(err))
			}
			return
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			c.logger.Warn("Undecodable server message", log.Error(err))
			continue
		}
		switch env.T {
		case protocol.TypeAck:
			ack, err := protocol.DecodePayload[protocol.Ack](env)
			c.deliver(reply{ack: ack, err: err})
		case protocol.TypeError:
			msg, _ := protocol.DecodePayload[protocol.ErrorMessage](env)
			rejected := errors.Wrap(ErrRejected, msg.Message)
			c.emitEvent(Event{Type: EventTypeError, Timestamp: time.Now(), Error: rejected})
			c.deliver(reply{err: rejected})
		}
	}
}

func (c *Client) deliver(r reply) {
	if !c.pending.Load() {
		return
	}
	select {
	case c.replies <- r:
	default:
	}
}

// On registers a handler for the given event type.
func (c *Client) On(eventType EventType, handler EventHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.eventHandlers[eventType] = append(c.eventHandlers[eventType], handler)
}

func (c *Client) emitEvent(event Event) {
	c.handlerMutex.RLock()
	handlers := append([]EventHandler(nil), c.eventHandlers[event.Type]...)
	c.handlerMutex.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}

func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and waits for the read loop to finish.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.logger.Info("Closing client")
	if c.conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	err := c.conn.Close()
	c.workerGroup.Wait()
	return err
}

// Watch dials the viewer socket and hands every decoded frame to fn until
// ctx ends or the server goes away.
func Watch(ctx context.Context, serverURL string, fn func(protocol.Frame)) error {
	url, err := endpoint(serverURL, "/ws/view")
	if err != nil {
		return err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return errors.Wrap(err, "dial view socket")
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() { _ = conn.Close() }()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "read frame")
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			return err
		}
		fn(frame)
	}
}

func endpoint(base, path string) (string, error) {
	switch {
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	default:
		return "", errors.Wrapf(ErrInvalidConfig, "server url %q", base)
	}
	return strings.TrimSuffix(base, "/") + path, nil
}
