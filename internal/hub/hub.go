// Package hub is the client's app root: it owns the route table and the
// history, and keeps exactly one screen mounted at a time.
package hub

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/internal/guard"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/internal/screen"
)

type HubMsg interface{ isHubMsg() }

type NavigateTo struct {
	Route notify.Route
}

type GetCurrent struct {
	Reply chan Current
}

type GetHistory struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (NavigateTo) isHubMsg()  {}
func (GetCurrent) isHubMsg()  {}
func (GetHistory) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Current is the location and the screen mounted for it. Screen is nil for
// routes without a screen (e.g. /login).
type Current struct {
	Path   string
	Screen screen.Mounted
}

type Route struct {
	Pattern string
	Mount   screen.Factory
}

// Routes is the client route table.
func Routes() []Route {
	return []Route{
		{"/", screen.Home().Factory()},
		{"/lobbies", screen.Lobbies().Factory()},
		{"/game/{gameId}", screen.GameLobby().Factory()},
		{"/phase1/{gameId}", screen.Phase1().Factory()},
		{"/phase2/{gameId}", screen.Phase2().Factory()},
		{"/phase3/{gameId}", screen.Phase3().Factory()},
		{"/friends", screen.Friends().Factory()},
		{"/account", screen.Account().Factory()},
	}
}

type Option func(*Hub)

func WithRoutes(routes []Route) Option { return func(h *Hub) { h.routes = routes } }

// WithCloser registers something to close on Shutdown, after the last screen.
func WithCloser(c io.Closer) Option { return func(h *Hub) { h.closers = append(h.closers, c) } }

type Hub struct {
	inbox   chan HubMsg
	deps    screen.Deps
	sig     notify.Signaler
	bound   notify.Signaler
	log     *zap.Logger
	routes  []Route
	mux     *chi.Mux
	mounts  map[string]screen.Factory
	closers []io.Closer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	// loop-owned; closeErr is read only after done is closed
	current  Current
	history  []string
	closeErr error
}

// NewHub starts the hub loop. sig receives popups from every screen and is
// told about every navigation the hub performs.
func NewHub(parent context.Context, deps screen.Deps, sig notify.Signaler, opts ...Option) *Hub {
	if sig == nil {
		sig = notify.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		deps:   deps,
		sig:    sig,
		log:    deps.Log.Named("hub"),
		routes: Routes(),
		mounts: make(map[string]screen.Factory),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(h)
	}

	h.mux = chi.NewRouter()
	for _, r := range h.routes {
		h.mux.Method(http.MethodGet, r.Pattern, http.NotFoundHandler())
		h.mounts[r.Pattern] = r.Mount
	}
	h.bound = notify.Funcs{OnPopup: sig.ShowPopup, OnNavigate: h.Navigate}

	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Navigate queues a navigation. It never blocks, so screens and guards may
// call it from inside a mount.
func (h *Hub) Navigate(r notify.Route) {
	msg := NavigateTo{Route: r}
	select {
	case h.inbox <- msg:
	case <-h.ctx.Done():
	default:
		go func() {
			select {
			case h.inbox <- msg:
			case <-h.ctx.Done():
			}
		}()
	}
}

// Open pushes path onto the history.
func (h *Hub) Open(path string) { h.Navigate(notify.Route{Path: path}) }

func (h *Hub) Current() Current {
	reply := make(chan Current, 1)
	select {
	case h.inbox <- GetCurrent{Reply: reply}:
	case <-h.done:
		return Current{}
	}
	select {
	case c := <-reply:
		return c
	case <-h.done:
		return Current{}
	}
}

func (h *Hub) History() []string {
	reply := make(chan []string, 1)
	select {
	case h.inbox <- GetHistory{Reply: reply}:
	case <-h.done:
		return nil
	}
	select {
	case hist := <-reply:
		return hist
	case <-h.done:
		return nil
	}
}

// Shutdown unmounts the current screen and closes everything registered
// with WithCloser. The closers also run when the parent context ends first;
// Shutdown then only reports their result. Later calls return nil.
func (h *Hub) Shutdown() error {
	var err error
	h.once.Do(func() {
		select {
		case h.inbox <- ShutdownHub{}:
		case <-h.done:
		}
		<-h.done
		err = h.closeErr
	})
	return err
}

// Done is closed once the hub loop exited.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.teardown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case NavigateTo:
				h.navigate(msg.Route)

			case GetCurrent:
				msg.Reply <- h.current

			case GetHistory:
				msg.Reply <- append([]string(nil), h.history...)

			case ShutdownHub:
				h.teardown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) teardown() {
	h.unmount()
	for _, c := range h.closers {
		h.closeErr = multierr.Append(h.closeErr, c.Close())
	}
	h.log.Debug("shut down", zap.Strings("history", h.history))
}

func (h *Hub) unmount() {
	if h.current.Screen != nil {
		h.current.Screen.Unmount()
	}
	h.current = Current{}
}

func (h *Hub) navigate(r notify.Route) {
	h.unmount()

	if r.Replace && len(h.history) > 0 {
		h.history[len(h.history)-1] = r.Path
	} else {
		h.history = append(h.history, r.Path)
	}
	h.current.Path = r.Path
	h.sig.Navigate(r)

	mount, params, ok := h.match(r.Path)
	if !ok {
		h.log.Debug("no screen for route", zap.String("path", r.Path))
		return
	}

	ctx := notify.WithSignaler(h.ctx, h.bound)
	s, err := mount(ctx, h.deps, params)
	switch {
	case errors.Is(err, guard.ErrDenied):
		h.log.Info("guard redirected", zap.String("path", r.Path))
		return
	case err != nil:
		h.log.Warn("mount failed", zap.String("path", r.Path), zap.Error(err))
		return
	}
	h.current.Screen = s
}

func (h *Hub) match(path string) (screen.Factory, screen.Params, bool) {
	rctx := chi.NewRouteContext()
	if !h.mux.Match(rctx, http.MethodGet, path) {
		return nil, screen.Params{}, false
	}
	mount, ok := h.mounts[rctx.RoutePattern()]
	return mount, screen.Params{GameID: rctx.URLParam("gameId")}, ok
}
