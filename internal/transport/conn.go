package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/runeboard/runeboard-client/internal/protocol"
)

// ErrClosed is returned when sending on, or reading from, a closed connection.
var ErrClosed = errors.New("connection closed")

// Options tunes a connection. Zero values fall back to the defaults below.
type Options struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadLimit    int64
	OutboxSize   int
	Header       http.Header
}

const (
	defaultWriteTimeout = 5 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultReadLimit    = 1 << 20
	defaultOutboxSize   = 16
)

func (o Options) withDefaults() Options {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = defaultOutboxSize
	}
	return o
}

// Conn is a client connection to one match room. Inbound frames are
// delivered in receipt order on Frames; outbound frames are written by a
// single writer goroutine.
type Conn struct {
	ws     *websocket.Conn
	opts   Options
	logger *zap.Logger

	send   chan []byte
	frames chan []byte

	done      chan struct{}
	closeOnce sync.Once
	running   atomic.Bool
}

// Dial connects to url and sends the hello frame for username.
func Dial(ctx context.Context, url, username string, opts Options, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	ws.SetReadLimit(opts.ReadLimit)

	c := &Conn{
		ws:     ws,
		opts:   opts,
		logger: logger,
		send:   make(chan []byte, opts.OutboxSize),
		frames: make(chan []byte),
		done:   make(chan struct{}),
	}

	// the server expects the hello before anything else
	if err := c.writeJSON(protocol.Hello{Username: username}); err != nil {
		ws.Close()
		return nil, fmt.Errorf("send hello: %w", err)
	}
	logger.Info("connected", zap.String("url", url), zap.String("username", username))
	return c, nil
}

// Frames delivers inbound frames. It is closed when the read loop ends.
func (c *Conn) Frames() <-chan []byte {
	return c.frames
}

// Send queues msg for the writer. It blocks while the outbox is full.
func (c *Conn) Send(ctx context.Context, msg protocol.Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run pumps the connection until ctx is cancelled, Close is called, or the
// connection fails. It returns nil on a local close and ErrClosed when the
// server closed the connection normally.
func (c *Conn) Run(ctx context.Context) error {
	c.running.Store(true)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(ctx) })
	g.Go(func() error { return c.writePump(ctx) })
	return g.Wait()
}

// Close stops both pumps and closes the socket.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	if !c.running.Load() {
		return c.ws.Close()
	}
	return nil
}

func (c *Conn) closing() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Conn) readPump(ctx context.Context) error {
	defer close(c.frames)

	pongWait := 2 * c.opts.PingInterval
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if c.closing() || ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("server closed connection", zap.Error(err))
				return ErrClosed
			}
			return fmt.Errorf("read: %w", err)
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case c.frames <- message:
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		}
	}
}

func (c *Conn) writePump(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		case <-c.done:
			c.writeClose()
			return nil
		case <-ctx.Done():
			c.writeClose()
			return nil
		}
	}
}

func (c *Conn) writeClose() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteTimeout)); err != nil {
		c.logger.Debug("close frame not sent", zap.Error(err))
	}
}

func (c *Conn) writeJSON(v any) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return c.ws.WriteJSON(v)
}
