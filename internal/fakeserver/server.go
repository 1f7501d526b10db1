// Package fakeserver is a scripted stand-in for the game backend: REST stubs
// plus the websocket topic endpoint. Tests and the dev server drive it.
package fakeserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

type Stub struct {
	Status  int
	Body    any
	Network bool // drop the connection instead of answering
}

type Recorded struct {
	Method string
	Path   string
	Query  string
	Body   json.RawMessage
}

type Registration struct {
	ConnID string
	Key    string
	Frame  json.RawMessage
}

type Server struct {
	router chi.Router
	hub    *Hub
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	stubs         map[string]Stub
	requests      []Recorded
	registrations []Registration
	conns         map[string]func()
	opened        int
	closes        []websocket.StatusCode
}

func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		hub:    NewHub(ctx),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		stubs:  make(map[string]Stub),
		conns:  make(map[string]func()),
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Router exposes the chi router so callers can mount extra routes.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) Close() {
	s.DropConnections()
	s.hub.Shutdown()
	s.cancel()
}

func stubKey(method, path string) string {
	return method + " " + strings.TrimPrefix(path, "/")
}

// Stub scripts the answer for method+path (path relative to /api/, query ignored).
func (s *Server) Stub(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs[stubKey(method, path)] = Stub{Status: status, Body: body}
}

// StubNetworkFailure makes method+path fail at the transport level.
func (s *Server) StubNetworkFailure(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs[stubKey(method, path)] = Stub{Network: true}
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestCount counts recorded requests; an empty method matches any.
func (s *Server) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && r.Path == strings.TrimPrefix(path, "/") {
			n++
		}
	}
	return n
}

func (s *Server) Registrations() []Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Registration(nil), s.registrations...)
}

// Connections is the number of websocket connections currently open.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Opened is the number of websocket connections accepted so far.
func (s *Server) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// CloseStatuses lists the close code of every websocket that ended after
// registering, -1 when no close frame arrived.
func (s *Server) CloseStatuses() []websocket.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]websocket.StatusCode(nil), s.closes...)
}

// DropConnections closes every websocket without a close handshake.
func (s *Server) DropConnections() {
	s.mu.Lock()
	drops := make([]func(), 0, len(s.conns))
	for _, drop := range s.conns {
		drops = append(drops, drop)
	}
	s.mu.Unlock()

	for _, drop := range drops {
		drop()
	}
}

// Push broadcasts msg to every connection registered for sub. It reports
// whether at least one connection was subscribed.
func (s *Server) Push(sub types.Subscription, msg types.PushMessage) bool {
	ch := s.hub.Get(sub.Key())
	if ch == nil {
		return false
	}
	v, ok := ch.State()
	if !ok || v.NumConns == 0 {
		return false
	}
	return ch.Send(Publish{Msg: msg})
}

func (s *Server) handleStub(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))

	rec := Recorded{Method: r.Method, Path: path, Query: r.URL.RawQuery}
	if json.Valid(body) {
		rec.Body = body
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	stub, ok := s.stubs[stubKey(r.Method, path)]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no stub for " + r.Method + " " + path})
		return
	}
	if stub.Network {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijack unsupported", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}

	status := stub.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, stub.Body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		body = map[string]bool{"success": status < 300}
	}
	_ = json.NewEncoder(w).Encode(body)
}
