package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

const (
	defaultBuffer = 256
	flushEvery    = 200 * time.Millisecond
	flushTimeout  = 5 * time.Second
)

type WriterOption func(*Writer)

func WithBuffer(n int) WriterOption { return func(w *Writer) { w.buffer = n } }

func WithLogger(l *zap.Logger) WriterOption { return func(w *Writer) { w.log = l } }

func WithSession(id string) WriterOption { return func(w *Writer) { w.session = id } }

// Writer records pushes without ever blocking the caller: entries go through
// a bounded buffer and are flushed in batches. When the buffer is full the
// entry is dropped and counted.
type Writer struct {
	dst     Appender
	log     *zap.Logger
	session string
	buffer  int

	seq     atomic.Int64
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	ch     chan Entry
	done   chan struct{}
	err    error
}

func NewWriter(dst Appender, opts ...WriterOption) *Writer {
	w := &Writer{dst: dst, log: zap.NewNop(), buffer: defaultBuffer}
	for _, o := range opts {
		o(w)
	}
	if w.session == "" {
		w.session = uuid.NewString()
	}
	if w.buffer <= 0 {
		w.buffer = defaultBuffer
	}
	w.log = w.log.With(zap.String("session", w.session))
	w.ch = make(chan Entry, w.buffer)
	w.done = make(chan struct{})
	go w.run()
	return w
}

func (w *Writer) Session() string { return w.session }

func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Record queues one applied push.
func (w *Writer) Record(screenID, screen string, sub types.Subscription, m types.PushMessage) {
	e := Entry{
		SessionID:  w.session,
		ScreenID:   screenID,
		Screen:     screen,
		Topic:      string(sub.Topic),
		SubKey:     sub.Key(),
		Type:       m.Type,
		UserID:     m.UserID,
		MessageID:  m.ID,
		ReceivedAt: time.Now().UTC(),
	}
	if len(m.Data) > 0 {
		e.Data = string(m.Data)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	e.Seq = w.seq.Add(1)
	select {
	case w.ch <- e:
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			w.log.Warn("journal buffer full, dropping", zap.Int64("dropped", n))
		}
	}
}

// Close flushes what is buffered and stops the writer. It returns every
// flush error seen during the writer's life.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
	w.mu.Unlock()
	<-w.done
	return w.err
}

func (w *Writer) run() {
	defer close(w.done)
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	batch := make([]Entry, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		err := w.dst.Append(ctx, batch)
		cancel()
		if err != nil {
			w.log.Warn("journal flush failed", zap.Int("entries", len(batch)), zap.Error(err))
			w.err = multierr.Append(w.err, err)
		}
		batch = make([]Entry, 0, batchSize)
	}

	for {
		select {
		case e, ok := <-w.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, e)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
