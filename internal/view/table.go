package view

import (
	"slices"
	"strings"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// Table is the state every game screen shares: who is playing, whose turn it
// is, and the local player's own hand and drinks.
type Table struct {
	GameID        string
	SelfID        string
	Players       []types.Player
	IsGameMaster  bool
	CurrentPlayer string
	Round         int
	DrinkCount    int
	Hand          []types.Card
	Chat          []types.ChatMessage
	Loaded        bool
	Leaving       string
}

func NewTable(gameID string) Table { return Table{GameID: gameID} }

func (t Table) IsCurrentPlayer() bool { return t.SelfID != "" && t.CurrentPlayer == t.SelfID }

// IsSpectator is true when the local user is marked as spectator or is not
// seated at a known, non-empty table.
func (t Table) IsSpectator() bool {
	if t.SelfID == "" || len(t.Players) == 0 {
		return false
	}
	i := t.playerIndex(t.SelfID)
	return i < 0 || t.Players[i].IsSpectator
}

func (t Table) Terminal() bool { return t.Leaving != "" }

func (t Table) Player(id string) (types.Player, bool) {
	if i := t.playerIndex(id); i >= 0 {
		return t.Players[i], true
	}
	return types.Player{}, false
}

func (t Table) playerIndex(id string) int {
	return slices.IndexFunc(t.Players, func(p types.Player) bool { return p.ID == id })
}

func (t Table) patchPlayer(id string, fn func(*types.Player)) Table {
	i := t.playerIndex(id)
	if i < 0 {
		return t
	}
	t.Players = slices.Clone(t.Players)
	fn(&t.Players[i])
	return t
}

func (t Table) addressedElsewhere(m types.PushMessage) bool {
	return m.UserID != "" && t.SelfID != "" && m.UserID != t.SelfID
}

// applyCommon folds the pushes shared by all game screens. ok is false when
// the message type is not one of them.
func (t Table) applyCommon(m types.PushMessage) (Table, []Effect, bool) {
	switch {
	case m.Type == types.EvtPlayersUpdate:
		var p types.PlayersUpdate
		if eff := decode(m, &p); eff != nil {
			return t, eff, true
		}
		if p.Players == nil {
			return t, missing(m, "players"), true
		}
		t.Players = p.Players
		return t, nil, true

	case m.Type == types.EvtAvatarUpdate:
		var p types.AvatarUpdate
		if eff := decode(m, &p); eff != nil {
			return t, eff, true
		}
		id := p.UserID
		if id == "" {
			id = m.UserID
		}
		return t.patchPlayer(id, func(pl *types.Player) { pl.Avatar = p.Avatar }), nil, true

	case m.Type == types.EvtPlayerDrinkUpdate:
		var p types.PlayerDrinkUpdate
		if eff := decode(m, &p); eff != nil {
			return t, eff, true
		}
		id := p.UserID
		if id == "" {
			id = m.UserID
		}
		if p.Drinks == nil || id == "" {
			return t, missing(m, "userId/drinks"), true
		}
		t = t.patchPlayer(id, func(pl *types.Player) { pl.Drinks = *p.Drinks })
		if id == t.SelfID {
			t.DrinkCount = *p.Drinks
		}
		return t, nil, true

	case m.Type == types.EvtDrinkUpdate:
		if t.addressedElsewhere(m) {
			return t, nil, true
		}
		var p types.DrinkUpdate
		if eff := decode(m, &p); eff != nil {
			return t, eff, true
		}
		if p.Drinks == nil {
			return t, missing(m, "drinks"), true
		}
		t.DrinkCount = *p.Drinks
		return t, nil, true

	case m.Type == types.EvtCardsUpdate:
		if t.addressedElsewhere(m) {
			return t, nil, true
		}
		var p types.CardsUpdate
		if eff := decode(m, &p); eff != nil {
			return t, eff, true
		}
		if p.Cards == nil {
			return t, missing(m, "cards"), true
		}
		t.Hand = p.Cards
		return t, nil, true

	case m.Type == types.EvtChatUpdate:
		var p types.ChatUpdate
		if eff := decode(m, &p); eff != nil {
			return t, eff, true
		}
		if p.Message == nil {
			return t, missing(m, "message"), true
		}
		t.Chat = appendMessage(t.Chat, *p.Message)
		return t, nil, true

	case types.IsKick(m.Type):
		target := m.UserID
		if target == "" {
			var p types.KickUpdate
			if eff := decode(m, &p); eff != nil {
				return t, eff, true
			}
			target = p.UserID
		}
		if target == "" && m.Type == types.EvtKicked {
			target = t.SelfID
		}
		if target == "" {
			return t, missing(m, "userId"), true
		}
		if target == t.SelfID {
			t.Leaving = HomePath
			return t, leave(HomePath, "Kicked", "You were removed from the game."), true
		}
		if i := t.playerIndex(target); i >= 0 {
			t.Players = slices.Delete(slices.Clone(t.Players), i, i+1)
		}
		return t, nil, true

	case types.IsClose(m.Type):
		t.Leaving = HomePath
		return t, leave(HomePath, "Game closed", "The game master closed this game."), true
	}
	return t, nil, false
}

func (t Table) applyTurn(current *string, round *int) Table {
	if current != nil {
		t.CurrentPlayer = *current
	}
	if round != nil {
		t.Round = *round
	}
	return t
}

func (t Table) applyGame(p types.GameUpdate) Table {
	if p.GameMaster != nil && t.SelfID != "" {
		t.IsGameMaster = *p.GameMaster == t.SelfID
	}
	if p.Round != nil {
		t.Round = *p.Round
	}
	return t
}

// transition moves the screen to path; it is the last thing a screen does.
func (t Table) transition(path string) (Table, []Effect) {
	t.Leaving = path
	return t, []Effect{Navigate{Path: path}}
}

func (t Table) handIndex(i int) bool { return i >= 0 && i < len(t.Hand) }

// LeaveGame leaves the table and returns home once the server accepted it.
func (t Table) LeaveGame() (Command, bool) {
	if t.Terminal() || t.GameID == "" {
		return none()
	}
	return Command{Request: api.LeaveGame(t.GameID), Then: navigateThen(HomePath, true)}, true
}

// SendChat posts to the game chat.
func (t Table) SendChat(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if t.Terminal() || text == "" {
		return none()
	}
	return do(api.SendMessage("", t.GameID, text))
}

func appendMessage(msgs []types.ChatMessage, m types.ChatMessage) []types.ChatMessage {
	if m.ID != "" && slices.ContainsFunc(msgs, func(x types.ChatMessage) bool { return x.ID == m.ID }) {
		return msgs
	}
	out := slices.Clone(msgs)
	return append(out, m)
}
