package fakeserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

const registerTimeout = 5 * time.Second

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	connID := uuid.NewString()
	s.mu.Lock()
	s.opened++
	s.conns[connID] = func() {
		cancel()
		_ = conn.CloseNow()
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, connID)
		s.mu.Unlock()
	}()

	// The first frame registers the subscription.
	readCtx, readCancel := context.WithTimeout(ctx, registerTimeout)
	_, frame, err := conn.Read(readCtx)
	readCancel()
	if err != nil {
		return
	}
	sub, err := parseRegistration(frame)
	if err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "bad registration")
		return
	}

	key := sub.Key()
	s.mu.Lock()
	s.registrations = append(s.registrations, Registration{ConnID: connID, Key: key, Frame: frame})
	s.mu.Unlock()
	s.log.Debug("registered", zap.String("conn", connID), zap.String("key", key))

	ch := s.hub.Ensure(key)
	if ch == nil {
		return
	}
	out := make(chan types.PushMessage, 16)
	if !ch.Send(Join{ConnID: connID, Outbox: out}) {
		return
	}
	defer ch.Send(Leave{ConnID: connID})

	// Writer goroutine
	go func() {
		for msg := range out {
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, 3*time.Second)
			err = conn.Write(wctx, websocket.MessageText, payload)
			wcancel()
			if err != nil {
				cancel()
				return
			}
		}
		// Channel dropped us (slow consumer or shutdown).
		cancel()
	}()

	// Reader loop; clients send nothing after registering.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			code := websocket.CloseStatus(err)
			s.mu.Lock()
			s.closes = append(s.closes, code)
			s.mu.Unlock()
			switch code {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				s.log.Debug("client closed", zap.String("conn", connID))
			}
			return
		}
	}
}

func parseRegistration(frame []byte) (types.Subscription, error) {
	var fields map[string]any
	if err := json.Unmarshal(frame, &fields); err != nil {
		return types.Subscription{}, err
	}
	topic, _ := fields["type"].(string)
	if topic == "" {
		return types.Subscription{}, errBadRegistration
	}
	delete(fields, "type")
	if len(fields) == 0 {
		fields = nil
	}
	return types.Subscription{Topic: types.Topic(topic), Payload: fields}, nil
}
