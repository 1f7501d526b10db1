// Package ws is the client side of the push channel: one reconnecting
// websocket per topic subscription.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

const (
	DefaultReconnectDelay = time.Second
	defaultDialTimeout    = 5 * time.Second
	writeTimeout          = 3 * time.Second
	readLimit             = 1 << 20
)

var ErrNoURL = errors.New("ws: no endpoint configured")

type Status int32

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
	StatusReconnectPending
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusReconnectPending:
		return "reconnect-pending"
	default:
		return "unknown"
	}
}

// Handler receives every push message, on the connection's reader goroutine.
type Handler func(types.PushMessage)

type Options struct {
	URL            string
	HTTPClient     *http.Client // shared with the REST client for the session cookie
	ReconnectDelay time.Duration
	DialTimeout    time.Duration
	Logger         *zap.Logger
}

type Manager struct {
	opts   Options
	log    *zap.Logger
	opened atomic.Int64
	active atomic.Int64
}

func NewManager(opts Options) *Manager {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{opts: opts, log: log}
}

// Opened counts transport connections established so far, reconnects included.
func (m *Manager) Opened() int { return int(m.opened.Load()) }

// Active counts transport connections currently open.
func (m *Manager) Active() int { return int(m.active.Load()) }

// Open starts a connection for sub. It returns immediately; the socket is
// dialed and re-dialed in the background until Close.
func (m *Manager) Open(ctx context.Context, sub types.Subscription, h Handler) (*Conn, error) {
	if m.opts.URL == "" {
		return nil, ErrNoURL
	}
	frame, err := sub.Envelope()
	if err != nil {
		return nil, fmt.Errorf("ws: %s: %w", sub.Topic, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		id:     uuid.NewString(),
		mgr:    m,
		sub:    sub,
		frame:  frame,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.log = m.log.With(zap.String("topic", string(sub.Topic)), zap.String("conn", c.id))
	c.SetHandler(h)
	c.status.Store(int32(StatusConnecting))

	go c.run(ctx)
	return c, nil
}

// Conn is one logical connection. Its identity survives reconnects; only the
// underlying socket is replaced.
type Conn struct {
	id      string
	mgr     *Manager
	sub     types.Subscription
	frame   []byte
	log     *zap.Logger
	handler atomic.Pointer[Handler]
	status  atomic.Int32

	mu      sync.Mutex
	sock    *websocket.Conn
	closing bool

	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

func (c *Conn) ID() string                        { return c.id }
func (c *Conn) Subscription() types.Subscription { return c.sub }
func (c *Conn) Status() Status                    { return Status(c.status.Load()) }

// Done is closed once the connection loop has exited.
func (c *Conn) Done() <-chan struct{} { return c.done }

// SetHandler replaces the handler; the next message goes to h.
func (c *Conn) SetHandler(h Handler) {
	if h == nil {
		h = func(types.PushMessage) {}
	}
	c.handler.Store(&h)
}

// Close stops reconnecting, closes an open socket with a normal closure and
// waits for the connection loop to exit. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closing = true
		sock := c.sock
		c.mu.Unlock()

		if sock != nil {
			if err := sock.Close(websocket.StatusNormalClosure, "unsubscribe"); err != nil {
				c.log.Debug("close handshake", zap.Error(err))
			}
		}
		c.cancel()
	})
	<-c.done
}

func (c *Conn) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

func (c *Conn) run(ctx context.Context) {
	defer close(c.done)
	defer c.status.Store(int32(StatusClosed))

	delay := c.mgr.opts.ReconnectDelay
	for {
		c.status.Store(int32(StatusConnecting))
		err := c.session(ctx)
		if ctx.Err() != nil || c.isClosing() {
			return
		}

		c.status.Store(int32(StatusReconnectPending))
		c.log.Info("connection lost, reconnecting", zap.Error(err), zap.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session dials, registers and reads until the socket fails.
func (c *Conn) session(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.mgr.opts.DialTimeout)
	sock, _, err := websocket.Dial(dialCtx, c.mgr.opts.URL, &websocket.DialOptions{
		HTTPClient: c.mgr.opts.HTTPClient,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		_ = sock.CloseNow()
		return nil
	}
	c.sock = sock
	c.mu.Unlock()

	c.mgr.opened.Add(1)
	c.mgr.active.Add(1)
	defer func() {
		c.mu.Lock()
		c.sock = nil
		c.mu.Unlock()
		_ = sock.CloseNow()
		c.mgr.active.Add(-1)
	}()

	sock.SetReadLimit(readLimit)

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	err = sock.Write(writeCtx, websocket.MessageText, c.frame)
	cancel()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	c.status.Store(int32(StatusOpen))
	c.log.Debug("subscribed", zap.ByteString("envelope", c.frame))

	for {
		typ, data, err := sock.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			c.log.Debug("ignoring binary frame", zap.Int("bytes", len(data)))
			continue
		}
		msg, err := types.ParsePush(data)
		if err != nil {
			c.log.Warn("dropping unparsable push", zap.Error(err), zap.Int("bytes", len(data)))
			continue
		}
		(*c.handler.Load())(msg)
	}
}
