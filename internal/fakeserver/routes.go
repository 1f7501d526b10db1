package fakeserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", s.handleWS)
	r.HandleFunc("/api/*", s.handleStub)
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
