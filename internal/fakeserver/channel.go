package fakeserver

import (
	"context"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

type Msg interface{ isChannelMsg() }

type Join struct {
	ConnID string
	Outbox chan types.PushMessage // where this connection wants to receive pushes
}

func (Join) isChannelMsg() {}

type Leave struct{ ConnID string }

func (Leave) isChannelMsg() {}

type Publish struct{ Msg types.PushMessage }

func (Publish) isChannelMsg() {}

type Shutdown struct{}

func (Shutdown) isChannelMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isChannelMsg() {}

type View struct {
	Key       string
	Published int
	NumConns  int
}

// Channel fans push messages out to every connection registered for one
// subscription key.
type Channel struct {
	key       string
	inbox     chan Msg
	published int
	conns     map[string]chan types.PushMessage
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewChannel(parent context.Context, key string) *Channel {
	ctx, cancel := context.WithCancel(parent)

	c := &Channel{
		key:    key,
		inbox:  make(chan Msg, 64),
		conns:  make(map[string]chan types.PushMessage),
		ctx:    ctx,
		cancel: cancel,
	}

	go c.loop()
	return c
}

func (c *Channel) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Join:
				c.conns[msg.ConnID] = msg.Outbox

			case Leave:
				if ch, ok := c.conns[msg.ConnID]; ok {
					close(ch)
					delete(c.conns, msg.ConnID)
				}

			case Publish:
				c.published++
				c.broadcast(msg.Msg)

			case GetState:
				msg.Reply <- View{Key: c.key, Published: c.published, NumConns: len(c.conns)}

			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Channel) shutdown() {
	for id, ch := range c.conns {
		close(ch)
		delete(c.conns, id)
	}
	c.cancel()
}

func (c *Channel) broadcast(m types.PushMessage) {
	for id, ch := range c.conns {
		select {
		case ch <- m:
		default:
			// Slow consumer, drop it.
			close(ch)
			delete(c.conns, id)
		}
	}
}

// Send enqueues a message unless the channel has shut down.
func (c *Channel) Send(m Msg) bool {
	select {
	case c.inbox <- m:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Channel) State() (View, bool) {
	reply := make(chan View, 1)
	if !c.Send(GetState{Reply: reply}) {
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-c.ctx.Done():
		return View{}, false
	}
}
