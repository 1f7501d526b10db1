// Package screen runs mounted screens. Each screen is an actor: one goroutine
// owns its view state and folds baseline results, push messages, user actions
// and REST outcomes into it in arrival order.
package screen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/guard"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/internal/ws"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

var (
	ErrStopped = errors.New("screen: stopped")
	ErrNoAPI   = errors.New("screen: no api client")
)

const (
	inboxSize        = 64
	baselineParallel = 4
)

// Recorder receives every push a screen applies, in order.
type Recorder interface {
	Record(screenID, screen string, sub types.Subscription, m types.PushMessage)
}

// Deps are shared by every screen of one client.
type Deps struct {
	API     *api.Client
	WS      *ws.Manager
	Log     *zap.Logger
	Journal Recorder
	// Observe, if set, is called on the screen loop after every state change.
	Observe func(screen string, state any)
}

type Params struct {
	GameID string
}

// Fetch loads one part of the baseline and returns how to fold it into state.
type Fetch[S any] func(ctx context.Context, c *api.Client, p Params) (func(S) S, error)

type Baseline[S any] struct {
	Name  string
	Fetch Fetch[S]
}

type Definition[S any] struct {
	Name     string
	Guard    *guard.Check
	Init     func(Params) S
	Topics   func(Params) []types.Subscription
	Reduce   func(S, types.PushMessage) (S, []view.Effect)
	Baseline []Baseline[S]
	// Ready marks the state loaded once every baseline fetch settled.
	Ready func(S) S
}

type screenMsg interface{ isScreenMsg() }

type pushMsg struct {
	sub types.Subscription
	msg types.PushMessage
}

type patchMsg[S any] struct {
	name string
	fn   func(S) S
}

type baselineFailed struct {
	err error
}

type baselineDone struct{}

type actionMsg[S any] struct {
	build func(S) (view.Command, bool)
	reply chan bool
}

type resultMsg struct {
	cmd  view.Command
	body json.RawMessage
	err  error
}

type snapshotMsg[S any] struct {
	reply chan S
}

func (pushMsg) isScreenMsg()        {}
func (patchMsg[S]) isScreenMsg()    {}
func (baselineFailed) isScreenMsg() {}
func (baselineDone) isScreenMsg()   {}
func (actionMsg[S]) isScreenMsg()   {}
func (resultMsg) isScreenMsg()      {}
func (snapshotMsg[S]) isScreenMsg() {}

type Screen[S any] struct {
	id     string
	def    Definition[S]
	deps   Deps
	params Params
	sig    notify.Signaler
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan screenMsg
	quit   chan struct{} // closed on the terminal transition
	done   chan struct{}

	// loop-owned
	state    S
	terminal bool

	mu          sync.Mutex
	subs        []*ws.Subscriber
	connsShut   bool
	last        S
	quitOnce    sync.Once
	unmountOnce sync.Once
}

// Mount runs the guard and, if it passes, starts the screen: loop first, then
// the topic subscriptions, then the baseline fetches in the background. The
// signaler is taken from ctx.
func Mount[S any](ctx context.Context, deps Deps, def Definition[S], p Params) (*Screen[S], error) {
	if deps.API == nil {
		return nil, ErrNoAPI
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	sig := notify.FromContext(ctx)
	log := deps.Log.With(zap.String("screen", def.Name))
	if p.GameID != "" {
		log = log.With(zap.String("gameId", p.GameID))
	}

	if def.Guard != nil {
		if !guard.NewGate(*def.Guard, log).Run(ctx, deps.API, p.GameID, sig) {
			return nil, guard.ErrDenied
		}
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Screen[S]{
		id:     uuid.NewString(),
		def:    def,
		deps:   deps,
		params: p,
		sig:    sig,
		log:    log,
		ctx:    sctx,
		cancel: cancel,
		inbox:  make(chan screenMsg, inboxSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if def.Init != nil {
		s.state = def.Init(p)
	}
	s.last = s.state

	go s.loop()

	if def.Topics != nil && deps.WS != nil {
		for _, sub := range def.Topics(p) {
			if err := s.subscribe(sub); err != nil {
				s.Unmount()
				return nil, err
			}
		}
	}

	go s.fetchBaseline()

	log.Debug("mounted", zap.String("id", s.id))
	return s, nil
}

func (s *Screen[S]) ID() string            { return s.id }
func (s *Screen[S]) Name() string          { return s.def.Name }
func (s *Screen[S]) Params() Params        { return s.params }
func (s *Screen[S]) Done() <-chan struct{} { return s.done }

// State returns a copy of the current state. After the screen stopped it
// returns the last state the loop produced.
func (s *Screen[S]) State() S {
	reply := make(chan S, 1)
	if s.post(snapshotMsg[S]{reply: reply}, false) {
		select {
		case st := <-reply:
			return st
		case <-s.done:
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Snapshot is State for callers that do not know S.
func (s *Screen[S]) Snapshot() any { return s.State() }

// Dispatch evaluates an action against the current state. It reports false,
// without any REST call, when the action is not permitted. Otherwise the call
// runs in the background and its failure is surfaced as a popup.
func (s *Screen[S]) Dispatch(ctx context.Context, build func(S) (view.Command, bool)) (bool, error) {
	reply := make(chan bool, 1)
	if !s.post(actionMsg[S]{build: build, reply: reply}, true) {
		return false, ErrStopped
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-s.done:
		return false, ErrStopped
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Unmount closes the screen's connections and stops the loop. REST results
// still in flight are dropped. Safe to call more than once.
func (s *Screen[S]) Unmount() {
	s.unmountOnce.Do(func() {
		s.stopPushes()
		s.closeConns()
		s.cancel()
		<-s.done
		s.log.Debug("unmounted", zap.String("id", s.id))
	})
}

// post hands m to the loop. Pushes and REST outcomes are refused once the
// screen went terminal.
func (s *Screen[S]) post(m screenMsg, stopOnQuit bool) bool {
	quit := s.quit
	if !stopOnQuit {
		quit = nil
	}
	select {
	case s.inbox <- m:
		return true
	case <-quit:
		return false
	case <-s.ctx.Done():
		return false
	}
}

func (s *Screen[S]) subscribe(sub types.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connsShut {
		return ErrStopped
	}
	sb := s.deps.WS.NewSubscriber()
	if _, err := sb.Ensure(s.ctx, sub, func(m types.PushMessage) {
		s.post(pushMsg{sub: sub, msg: m}, true)
	}); err != nil {
		return err
	}
	s.subs = append(s.subs, sb)
	return nil
}

func (s *Screen[S]) closeConns() {
	s.mu.Lock()
	subs := s.subs
	s.subs, s.connsShut = nil, true
	s.mu.Unlock()

	for _, sb := range subs {
		sb.Close()
	}
}

func (s *Screen[S]) stopPushes() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// fetchBaseline runs the fetches concurrently. A failing fetch does not
// cancel the others; the first failure is reported once all settled.
func (s *Screen[S]) fetchBaseline() {
	var g errgroup.Group
	g.SetLimit(baselineParallel)
	for _, b := range s.def.Baseline {
		g.Go(func() error {
			fn, err := b.Fetch(s.ctx, s.deps.API, s.params)
			if err != nil {
				if s.ctx.Err() == nil {
					s.log.Warn("baseline fetch failed", zap.String("fetch", b.Name), zap.Error(err))
				}
				return fmt.Errorf("%s: %w", b.Name, err)
			}
			s.post(patchMsg[S]{name: b.Name, fn: fn}, true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.post(baselineFailed{err: err}, true)
	}
	s.post(baselineDone{}, true)
}

func (s *Screen[S]) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case m := <-s.inbox:
			s.handle(m)
		}
	}
}

func (s *Screen[S]) handle(m screenMsg) {
	switch m := m.(type) {
	case pushMsg:
		if s.terminal {
			return
		}
		if s.deps.Journal != nil {
			s.deps.Journal.Record(s.id, s.def.Name, m.sub, m.msg)
		}
		st, eff := s.def.Reduce(s.state, m.msg)
		s.commit(st)
		s.apply(eff)

	case patchMsg[S]:
		if s.terminal {
			return
		}
		s.commit(m.fn(s.state))

	case baselineFailed:
		if s.terminal || s.ctx.Err() != nil {
			return
		}
		s.sig.ShowPopup(s.ctx, failurePopup(m.err))

	case baselineDone:
		if !s.terminal && s.def.Ready != nil {
			s.commit(s.def.Ready(s.state))
		}

	case actionMsg[S]:
		if s.terminal {
			m.reply <- false
			return
		}
		cmd, ok := m.build(s.state)
		m.reply <- ok
		if ok {
			go s.execute(cmd)
		}

	case resultMsg:
		if s.terminal {
			return
		}
		if m.err != nil {
			s.log.Info("request failed", zap.Stringer("request", m.cmd.Request), zap.Error(m.err))
			s.sig.ShowPopup(s.ctx, failurePopup(m.err))
			return
		}
		if m.cmd.Then != nil {
			s.apply(m.cmd.Then(m.body))
		}

	case snapshotMsg[S]:
		m.reply <- s.state
	}
}

func (s *Screen[S]) execute(cmd view.Command) {
	body, err := s.deps.API.Do(s.ctx, cmd.Request, nil)
	if s.ctx.Err() != nil {
		return
	}
	s.post(resultMsg{cmd: cmd, body: body, err: err}, true)
}

func (s *Screen[S]) commit(st S) {
	s.state = st
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
	if s.deps.Observe != nil {
		s.deps.Observe(s.def.Name, st)
	}
}

func (s *Screen[S]) apply(effects []view.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case view.Malformed:
			s.log.Warn("malformed push", zap.String("type", e.Type), zap.Error(e.Err))
		case view.Notify:
			s.sig.ShowPopup(s.ctx, e.Popup)
		case view.Navigate:
			if s.terminal {
				continue
			}
			s.terminal = true
			s.stopPushes()
			s.closeConns()
			s.sig.Navigate(notify.Route{Path: e.Path, Replace: e.Replace})
		}
	}
}

// failurePopup turns a REST failure into what the user sees: the server's
// own message for validation errors, a generic one otherwise.
func failurePopup(err error) notify.Popup {
	if apiErr, ok := api.AsError(err); ok {
		title := apiErr.Title
		if title == "" {
			title = "Request rejected"
		}
		return notify.Popup{Title: title, Message: apiErr.Message, Kind: notify.KindError}
	}
	return notify.Popup{
		Title:   "Connection problem",
		Message: "The server could not be reached. Please try again.",
		Kind:    notify.KindError,
	}
}

// Mounted is a running screen of any state type.
type Mounted interface {
	ID() string
	Name() string
	Params() Params
	Done() <-chan struct{}
	Snapshot() any
	Unmount()
}

type Factory func(ctx context.Context, deps Deps, p Params) (Mounted, error)

func (d Definition[S]) Factory() Factory {
	return func(ctx context.Context, deps Deps, p Params) (Mounted, error) {
		s, err := Mount(ctx, deps, d, p)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
