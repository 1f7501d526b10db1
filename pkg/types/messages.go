package types

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// Client -> Server (one frame per successful open)
// Registration:
//   type: "account" | "lobby" | "subscribe" | "chat" | "gameChat"
//   gameId: string   // subscribe, gameChat
//   lobbyId: string  // optional, lobby scoped lists
//
// Server -> Client
// Push:
//   type: event name (see events.go)
//   data: event specific object, optional
//   userId: string, optional (kicked, avatarUpdate, cardsUpdate addressing)
//   id: string, optional

var ErrReservedKey = errors.New("payload may not set the type key")

type Subscription struct {
	Topic   Topic
	Payload map[string]any
}

func NewSubscription(topic Topic, payload map[string]any) Subscription {
	return Subscription{Topic: topic, Payload: payload}
}

// Envelope is the registration frame sent once per transport open.
func (s Subscription) Envelope() ([]byte, error) {
	frame := make(map[string]any, len(s.Payload)+1)
	for k, v := range s.Payload {
		if k == "type" {
			return nil, ErrReservedKey
		}
		frame[k] = v
	}
	frame["type"] = string(s.Topic)
	return json.Marshal(frame)
}

// Key identifies the subscription; equal keys mean the same server-side stream.
func (s Subscription) Key() string {
	keys := make([]string, 0, len(s.Payload))
	for k := range s.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(s.Topic))
	for _, k := range keys {
		v, err := json.Marshal(s.Payload[k])
		if err != nil {
			v = []byte("?")
		}
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(v)
	}
	return b.String()
}

func (s Subscription) String() string { return s.Key() }

func AccountTopic() Subscription { return Subscription{Topic: TopicAccount} }

func LobbyTopic() Subscription { return Subscription{Topic: TopicLobby} }

func ChatTopic() Subscription { return Subscription{Topic: TopicChat} }

func GameTopic(gameID string) Subscription {
	return Subscription{Topic: TopicGame, Payload: map[string]any{"gameId": gameID}}
}

func GameChatTopic(gameID string) Subscription {
	return Subscription{Topic: TopicGameChat, Payload: map[string]any{"gameId": gameID}}
}

type PushMessage struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	UserID string          `json:"userId,omitempty"`
	ID     string          `json:"id,omitempty"`
}

// Decode unmarshals Data into v. A missing or null data field leaves v untouched.
func (m PushMessage) Decode(v any) error {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

func ParsePush(frame []byte) (PushMessage, error) {
	var m PushMessage
	if err := json.Unmarshal(frame, &m); err != nil {
		return PushMessage{}, err
	}
	if m.Type == "" {
		return PushMessage{}, errors.New("push message without type")
	}
	return m, nil
}

// NewPush builds a push frame; used by the dev server and tests.
func NewPush(eventType string, data any) (PushMessage, error) {
	m := PushMessage{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return PushMessage{}, err
		}
		m.Data = raw
	}
	return m, nil
}
