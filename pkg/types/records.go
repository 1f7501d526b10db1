package types

import "time"

type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar,omitempty"`
	Title        string `json:"title,omitempty"`
	Drinks       int    `json:"drinks"`
	CardCount    int    `json:"cardCount,omitempty"`
	IsGameMaster bool   `json:"isGameMaster,omitempty"`
	IsSpectator  bool   `json:"isSpectator,omitempty"`
}

type Card struct {
	Suit    string `json:"suit"`
	Value   string `json:"value"`
	Flipped bool   `json:"flipped,omitempty"`
}

func (c Card) IsZero() bool { return c.Suit == "" && c.Value == "" }

type GameSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
	Private    bool   `json:"isPrivate,omitempty"`
	Started    bool   `json:"started,omitempty"`
}

type Title struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
}

type Account struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Avatar     string  `json:"avatar,omitempty"`
	Title      string  `json:"title,omitempty"`
	FriendCode string  `json:"friendCode,omitempty"`
	ClickSound string  `json:"clickSound,omitempty"`
	CardTheme  string  `json:"cardTheme,omitempty"`
	Titles     []Title `json:"titles,omitempty"`
}

type Friend struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Online bool   `json:"online,omitempty"`
	Unread int    `json:"unread,omitempty"`
}

type FriendRequest struct {
	ID       string `json:"id"`
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
}

type ChatMessage struct {
	ID     string    `json:"id"`
	FromID string    `json:"fromId"`
	ToID   string    `json:"toId,omitempty"`
	GameID string    `json:"gameId,omitempty"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
	Read   bool      `json:"read,omitempty"`
}
