// Package notify carries popup and navigation requests from screens to
// whatever owns the user interface, without the screens knowing about it.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindError   Kind = "error"
	KindConfirm Kind = "confirm"
)

type Popup struct {
	Title   string
	Message string
	Kind    Kind
}

type Route struct {
	Path    string
	Replace bool
}

type Signaler interface {
	// ShowPopup blocks until the popup is dismissed and reports whether it was confirmed.
	ShowPopup(ctx context.Context, p Popup) bool
	Navigate(r Route)
}

type ctxKey struct{}

func WithSignaler(ctx context.Context, s Signaler) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext never returns nil; before a signaler is bound it returns one
// that drops every request.
func FromContext(ctx context.Context) Signaler {
	if s, ok := ctx.Value(ctxKey{}).(Signaler); ok && s != nil {
		return s
	}
	return Nop{}
}

type Nop struct{}

func (Nop) ShowPopup(context.Context, Popup) bool { return false }
func (Nop) Navigate(Route)                        {}

// Funcs adapts plain functions; nil fields behave like Nop.
type Funcs struct {
	OnPopup    func(ctx context.Context, p Popup) bool
	OnNavigate func(r Route)
}

func (f Funcs) ShowPopup(ctx context.Context, p Popup) bool {
	if f.OnPopup == nil {
		return false
	}
	return f.OnPopup(ctx, p)
}

func (f Funcs) Navigate(r Route) {
	if f.OnNavigate != nil {
		f.OnNavigate(r)
	}
}

// Logger writes popups and navigations to zap and confirms every popup.
type Logger struct {
	Log *zap.Logger
}

func (l Logger) ShowPopup(_ context.Context, p Popup) bool {
	l.Log.Info("popup", zap.String("kind", string(p.Kind)), zap.String("title", p.Title), zap.String("message", p.Message))
	return true
}

func (l Logger) Navigate(r Route) {
	l.Log.Info("navigate", zap.String("path", r.Path), zap.Bool("replace", r.Replace))
}

// Chain fans requests out to every signaler; the popup answer comes from the first.
type Chain []Signaler

func (c Chain) ShowPopup(ctx context.Context, p Popup) bool {
	answer := false
	for i, s := range c {
		ok := s.ShowPopup(ctx, p)
		if i == 0 {
			answer = ok
		}
	}
	return answer
}

func (c Chain) Navigate(r Route) {
	for _, s := range c {
		s.Navigate(r)
	}
}

// Recorder keeps every request; it is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	popups []Popup
	routes []Route
	answer bool
	notify chan struct{}
}

func NewRecorder(answer bool) *Recorder {
	return &Recorder{answer: answer, notify: make(chan struct{}, 64)}
}

func (r *Recorder) ShowPopup(_ context.Context, p Popup) bool {
	r.mu.Lock()
	r.popups = append(r.popups, p)
	r.mu.Unlock()
	r.poke()
	return r.answer
}

func (r *Recorder) Navigate(rt Route) {
	r.mu.Lock()
	r.routes = append(r.routes, rt)
	r.mu.Unlock()
	r.poke()
}

func (r *Recorder) poke() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Changed fires after each recorded request (coalesced when nobody listens).
func (r *Recorder) Changed() <-chan struct{} { return r.notify }

func (r *Recorder) Popups() []Popup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Popup(nil), r.popups...)
}

func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}
