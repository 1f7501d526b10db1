package ws

import (
	"context"
	"sync"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// Subscriber owns at most one Conn. Ensure is idempotent for an unchanged
// subscription and replaces the connection when topic or payload change.
type Subscriber struct {
	mgr  *Manager
	mu   sync.Mutex
	conn *Conn
	key  string
}

func (m *Manager) NewSubscriber() *Subscriber { return &Subscriber{mgr: m} }

func (s *Subscriber) Ensure(ctx context.Context, sub types.Subscription, h Handler) (*Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sub.Key()
	if s.conn != nil && s.key == key {
		s.conn.SetHandler(h)
		return s.conn, nil
	}

	if s.conn != nil {
		s.conn.Close()
		s.conn, s.key = nil, ""
	}

	c, err := s.mgr.Open(ctx, sub, h)
	if err != nil {
		return nil, err
	}
	s.conn, s.key = c, key
	return c, nil
}

// Conn returns the current connection, or nil.
func (s *Subscriber) Conn() *Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Subscriber) Close() {
	s.mu.Lock()
	c := s.conn
	s.conn, s.key = nil, ""
	s.mu.Unlock()

	if c != nil {
		c.Close()
	}
}
