package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/internal/fakeserver"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

type stubRequest struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// mountAdmin adds the routes that script the server at runtime:
//
//	POST /admin/push/{topic}?gameId=  body: push message
//	POST /admin/stub                  body: stubRequest
//	POST /admin/drop                  drop every websocket
//	GET  /admin/requests              recorded REST calls
func mountAdmin(fs *fakeserver.Server, log *zap.Logger) {
	fs.Router().Route("/admin", func(r chi.Router) {
		r.Post("/push/{topic}", func(w http.ResponseWriter, r *http.Request) {
			var msg types.PushMessage
			if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Type == "" {
				http.Error(w, "body must be a push message with a type", http.StatusBadRequest)
				return
			}
			sub := types.Subscription{Topic: types.Topic(chi.URLParam(r, "topic"))}
			if id := r.URL.Query().Get("gameId"); id != "" {
				sub.Payload = map[string]any{"gameId": id}
			}
			if !fs.Push(sub, msg) {
				http.Error(w, "nobody subscribed to "+sub.Key(), http.StatusConflict)
				return
			}
			log.Info("pushed", zap.Stringer("subscription", sub), zap.String("type", msg.Type))
			w.WriteHeader(http.StatusAccepted)
		})

		r.Post("/stub", func(w http.ResponseWriter, r *http.Request) {
			var req stubRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" || req.Path == "" {
				http.Error(w, "body must name method and path", http.StatusBadRequest)
				return
			}
			var body any
			if len(req.Body) > 0 {
				body = req.Body
			}
			fs.Stub(req.Method, req.Path, req.Status, body)
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/drop", func(w http.ResponseWriter, r *http.Request) {
			fs.DropConnections()
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/requests", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(fs.Requests())
		})
	})
}
