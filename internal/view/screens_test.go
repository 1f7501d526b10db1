package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

func TestLobbyList_Apply(t *testing.T) {
	s := LobbyList{Loaded: true}

	s, eff := s.Apply(push(t, `{"type":"lobbysUpdate","data":{"games":[{"id":"a","name":"A","players":1},{"id":"b","name":"B","players":2}]}}`))
	require.Empty(t, eff)
	require.Len(t, s.Games, 2)

	s, _ = s.Apply(push(t, `{"type":"lobbyUpdate","data":{"game":{"id":"a","name":"A","players":3}}}`))
	assert.Equal(t, 3, s.Games[0].Players)

	s, _ = s.Apply(push(t, `{"type":"lobbyUpdate","data":{"game":{"id":"c","name":"C","players":1}}}`))
	assert.Len(t, s.Games, 3)

	s, _ = s.Apply(push(t, `{"type":"lobbyUpdate","data":{"id":"b","removed":true}}`))
	ids := []string{}
	for _, g := range s.Games {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestLobbyList_CreateAndJoin(t *testing.T) {
	s := LobbyList{Loaded: true, Games: []types.GameSummary{
		{ID: "full", Players: 4, MaxPlayers: 4},
		{ID: "open", Players: 1, MaxPlayers: 4},
	}}

	_, ok := s.CreateGame("   ", false)
	assert.False(t, ok)

	cmd, ok := s.CreateGame(" Friday ", true)
	require.True(t, ok)
	assert.Equal(t, api.CreateGame("Friday", true), cmd.Request)
	assert.Equal(t, []Effect{Navigate{Path: "/game/g9"}}, cmd.Then(json.RawMessage(`{"gameId":"g9"}`)))
	eff := cmd.Then(json.RawMessage(`{}`))
	require.Len(t, eff, 1)
	assert.IsType(t, Notify{}, eff[0])

	_, ok = s.JoinGame("full")
	assert.False(t, ok)
	cmd, ok = s.JoinGame("open")
	require.True(t, ok)
	assert.Equal(t, api.JoinGame("open"), cmd.Request)
	assert.Equal(t, []Effect{Navigate{Path: "/game/open"}}, cmd.Then(nil))

	_, ok = s.JoinGame("private-unlisted")
	assert.True(t, ok)
}

func TestFriends_Chat(t *testing.T) {
	s := Friends{SelfID: "me", Loaded: true, Friends: []types.Friend{{ID: "bob", Name: "Bob"}}}

	_, ok := s.MarkRead("bob")
	assert.False(t, ok, "nothing unread")

	in := `{"type":"chatUpdate","data":{"message":{"id":"1","fromId":"bob","toId":"me","text":"hi","sentAt":"2024-01-01T00:00:00Z"}}}`
	s, eff := s.Apply(push(t, in))
	require.Empty(t, eff)
	s, _ = s.Apply(push(t, in))
	assert.Len(t, s.Conversations["bob"], 1)
	assert.Equal(t, 1, s.Friends[0].Unread)

	out := `{"type":"chatUpdate","data":{"message":{"id":"2","fromId":"me","toId":"bob","text":"yo","sentAt":"2024-01-01T00:00:01Z"}}}`
	s, _ = s.Apply(push(t, out))
	assert.Len(t, s.Conversations["bob"], 2)
	assert.Equal(t, 1, s.Friends[0].Unread)

	cmd, ok := s.MarkRead("bob")
	require.True(t, ok)
	assert.Equal(t, api.MarkMessagesRead("bob"), cmd.Request)

	_, ok = s.SendMessage("stranger", "hi")
	assert.False(t, ok)
	cmd, ok = s.SendMessage("bob", " hi ")
	require.True(t, ok)
	assert.Equal(t, api.SendMessage("bob", "", "hi"), cmd.Request)
}

func TestFriends_ChatBeforeOwnIDIsKnown(t *testing.T) {
	s := Friends{Friends: []types.Friend{{ID: "bob", Name: "Bob"}}}

	out := `{"type":"chatUpdate","data":{"message":{"id":"1","fromId":"me","toId":"bob","text":"yo","sentAt":"2024-01-01T00:00:00Z"}}}`
	s, eff := s.Apply(push(t, out))
	require.Empty(t, eff)
	assert.Len(t, s.Conversations["bob"], 1)
	assert.Empty(t, s.Conversations["me"])
	assert.Equal(t, 0, s.Friends[0].Unread)

	in := `{"type":"chatUpdate","data":{"message":{"id":"2","fromId":"bob","toId":"me","text":"hi","sentAt":"2024-01-01T00:00:01Z"}}}`
	s, _ = s.Apply(push(t, in))
	assert.Len(t, s.Conversations["bob"], 2)
	assert.Equal(t, 1, s.Friends[0].Unread)
}

func TestFriends_Requests(t *testing.T) {
	s := Friends{SelfID: "me", Loaded: true}
	s, _ = s.Apply(push(t, `{"type":"friendsUpdate","data":{"requests":[{"id":"r1","fromId":"eve","fromName":"Eve"}]}}`))
	s, _ = s.Apply(push(t, `{"type":"accountUpdate","data":{"friendCode":"ABC"}}`))
	assert.Equal(t, "ABC", s.FriendCode)

	_, ok := s.AcceptFriendRequest("r2")
	assert.False(t, ok)
	cmd, ok := s.AcceptFriendRequest("r1")
	require.True(t, ok)
	assert.Equal(t, api.AcceptFriendRequest("r1"), cmd.Request)

	_, ok = s.SendFriendRequest("ABC")
	assert.False(t, ok, "own code")
	_, ok = s.SendFriendRequest("XYZ")
	assert.True(t, ok)
}

func TestAccount(t *testing.T) {
	s := Account{Loaded: true, Account: types.Account{ID: "me", Username: "me", Titles: []types.Title{
		{ID: "t1", Name: "Rookie", Unlocked: true},
		{ID: "t2", Name: "Legend"},
	}}}

	s, _ = s.Apply(push(t, `{"type":"accountUpdate","data":{"clickSound":"pop","title":"Rookie"}}`))
	assert.Equal(t, "pop", s.ClickSound)
	assert.Equal(t, "Rookie", s.Title)
	assert.Equal(t, "me", s.Username)

	s, _ = s.Apply(push(t, `{"type":"avatarUpdate","data":{"userId":"bob","avatar":"bob.png"}}`))
	assert.Empty(t, s.Avatar)
	s, _ = s.Apply(push(t, `{"type":"avatarUpdate","data":{"userId":"me","avatar":"me.png"}}`))
	assert.Equal(t, "me.png", s.Avatar)

	_, ok := s.SetTitle("t2")
	assert.False(t, ok, "locked")
	_, ok = s.SetTitle("t1")
	assert.True(t, ok)

	_, ok = s.SetClickSound("pop")
	assert.False(t, ok, "unchanged")

	_, ok = s.UploadAvatar("big.png", make([]byte, MaxAvatarBytes+1))
	assert.False(t, ok)
	cmd, ok := s.UploadAvatar("a.png", []byte("png"))
	require.True(t, ok)
	require.NotNil(t, cmd.Request.Upload)

	cmd, ok = s.Logout()
	require.True(t, ok)
	assert.Equal(t, []Effect{Navigate{Path: LoginPath, Replace: true}}, cmd.Then(nil))
}
