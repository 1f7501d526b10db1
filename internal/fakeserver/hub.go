package fakeserver

import "context"

type HubMsg interface{ isHubMsg() }

type EnsureChannel struct {
	Key   string
	Reply chan *Channel
}

type GetChannel struct {
	Key   string
	Reply chan *Channel
}

type ListChannels struct {
	Reply chan []*Channel
}

type ShutdownHub struct{}

func (EnsureChannel) isHubMsg() {}
func (GetChannel) isHubMsg()    {}
func (ListChannels) isHubMsg()  {}
func (ShutdownHub) isHubMsg()   {}

// Hub maps subscription keys to channels.
type Hub struct {
	inbox    chan HubMsg
	channels map[string]*Channel
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		channels: make(map[string]*Channel),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureChannel:
				ch := h.channels[msg.Key]
				if ch == nil {
					ch = NewChannel(h.ctx, msg.Key)
					h.channels[msg.Key] = ch
				}
				msg.Reply <- ch

			case GetChannel:
				msg.Reply <- h.channels[msg.Key] // may be nil

			case ListChannels:
				out := make([]*Channel, 0, len(h.channels))
				for _, ch := range h.channels {
					out = append(out, ch)
				}
				msg.Reply <- out

			case ShutdownHub:
				for _, ch := range h.channels {
					ch.Send(Shutdown{})
				}
				clear(h.channels)
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) ask(m HubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Ensure(key string) *Channel {
	reply := make(chan *Channel, 1)
	if !h.ask(EnsureChannel{Key: key, Reply: reply}) {
		return nil
	}
	return await(h.ctx, reply)
}

func (h *Hub) Get(key string) *Channel {
	reply := make(chan *Channel, 1)
	if !h.ask(GetChannel{Key: key, Reply: reply}) {
		return nil
	}
	return await(h.ctx, reply)
}

func (h *Hub) List() []*Channel {
	reply := make(chan []*Channel, 1)
	if !h.ask(ListChannels{Reply: reply}) {
		return nil
	}
	return await(h.ctx, reply)
}

func (h *Hub) Shutdown() { h.ask(ShutdownHub{}) }

func await[T any](ctx context.Context, reply <-chan T) T {
	select {
	case v := <-reply:
		return v
	case <-ctx.Done():
		var zero T
		return zero
	}
}
