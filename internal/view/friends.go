package view

import (
	"maps"
	"slices"
	"strings"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// Friends is the friend list, pending requests and one conversation per friend.
type Friends struct {
	SelfID        string
	FriendCode    string
	Friends       []types.Friend
	Requests      []types.FriendRequest
	Conversations map[string][]types.ChatMessage
	Loaded        bool
}

func (s Friends) Stage() Stage {
	if !s.Loaded {
		return StageLoading
	}
	return StageIdle
}

func (s Friends) Friend(id string) (types.Friend, bool) {
	if i := s.friendIndex(id); i >= 0 {
		return s.Friends[i], true
	}
	return types.Friend{}, false
}

func (s Friends) friendIndex(id string) int {
	return slices.IndexFunc(s.Friends, func(f types.Friend) bool { return f.ID == id })
}

// peer is the other side of a direct message. Until the own id is known a
// message from a non-friend to a friend is taken as sent by the user.
func (s Friends) peer(m types.ChatMessage) string {
	switch {
	case s.SelfID != "" && m.FromID == s.SelfID:
		return m.ToID
	case s.SelfID == "" && s.friendIndex(m.FromID) < 0 && s.friendIndex(m.ToID) >= 0:
		return m.ToID
	}
	return m.FromID
}

func (s Friends) Apply(m types.PushMessage) (Friends, []Effect) {
	switch m.Type {
	case types.EvtFriendsUpdate:
		var p types.FriendsUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		if p.Friends == nil && p.Requests == nil {
			return s, missing(m, "friends/requests")
		}
		if p.Friends != nil {
			s.Friends = p.Friends
		}
		if p.Requests != nil {
			s.Requests = p.Requests
		}

	case types.EvtChatUpdate:
		var p types.ChatUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		if p.Message == nil {
			return s, missing(m, "message")
		}
		msg := *p.Message
		if msg.GameID != "" {
			// game chat belongs to the game screens
			return s, nil
		}
		peer := s.peer(msg)
		if peer == "" {
			return s, missing(m, "fromId/toId")
		}
		before := len(s.Conversations[peer])
		conv := appendMessage(s.Conversations[peer], msg)
		if len(conv) == before {
			return s, nil
		}
		s.Conversations = maps.Clone(s.Conversations)
		if s.Conversations == nil {
			s.Conversations = make(map[string][]types.ChatMessage)
		}
		s.Conversations[peer] = conv
		if msg.FromID == peer && !msg.Read {
			if i := s.friendIndex(peer); i >= 0 {
				s.Friends = slices.Clone(s.Friends)
				s.Friends[i].Unread++
			}
		}

	case types.EvtAccountUpdate:
		var p types.AccountUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		if p.FriendCode != nil {
			s.FriendCode = *p.FriendCode
		}
	}
	return s, nil
}

func (s Friends) SendFriendRequest(code string) (Command, bool) {
	code = strings.TrimSpace(code)
	if code == "" || code == s.FriendCode {
		return none()
	}
	return do(api.SendFriendRequest(code))
}

func (s Friends) hasRequest(id string) bool {
	return slices.ContainsFunc(s.Requests, func(r types.FriendRequest) bool { return r.ID == id })
}

func (s Friends) AcceptFriendRequest(id string) (Command, bool) {
	if !s.hasRequest(id) {
		return none()
	}
	return do(api.AcceptFriendRequest(id))
}

func (s Friends) DeclineFriendRequest(id string) (Command, bool) {
	if !s.hasRequest(id) {
		return none()
	}
	return do(api.DeclineFriendRequest(id))
}

func (s Friends) RemoveFriend(id string) (Command, bool) {
	if s.friendIndex(id) < 0 {
		return none()
	}
	return do(api.RemoveFriend(id))
}

func (s Friends) SendMessage(friendID, text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" || s.friendIndex(friendID) < 0 {
		return none()
	}
	return do(api.SendMessage(friendID, "", text))
}

// MarkRead is a no-op when nothing is unread.
func (s Friends) MarkRead(friendID string) (Command, bool) {
	f, ok := s.Friend(friendID)
	if !ok || f.Unread == 0 {
		return none()
	}
	return do(api.MarkMessagesRead(friendID))
}
