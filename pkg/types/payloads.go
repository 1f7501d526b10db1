package types

// Push payloads. Pointer and nil-slice fields mean "not part of this delta".

type AccountUpdate struct {
	Username   *string `json:"username,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	Title      *string `json:"title,omitempty"`
	FriendCode *string `json:"friendCode,omitempty"`
	ClickSound *string `json:"clickSound,omitempty"`
	CardTheme  *string `json:"cardTheme,omitempty"`
}

type TitlesUpdate struct {
	Titles []Title `json:"titles"`
}

type FriendsUpdate struct {
	Friends  []Friend        `json:"friends,omitempty"`
	Requests []FriendRequest `json:"requests,omitempty"`
}

type LobbysUpdate struct {
	Games []GameSummary `json:"games"`
}

type LobbyUpdate struct {
	Game    *GameSummary `json:"game,omitempty"`
	Removed bool         `json:"removed,omitempty"`
	ID      string       `json:"id,omitempty"`
}

type GameUpdate struct {
	GameMaster     *string `json:"gameMaster,omitempty"`
	Round          *int    `json:"round,omitempty"`
	IsRowFlipped   *bool   `json:"isRowFlipped,omitempty"`
	AllCardsPlayed *bool   `json:"allCardsPlayed,omitempty"`
	HasToEx        *bool   `json:"hasToEx,omitempty"`
	Finished       *bool   `json:"finished,omitempty"`
}

type PlayersUpdate struct {
	Players []Player `json:"players"`
}

type AvatarUpdate struct {
	UserID string `json:"userId,omitempty"`
	Avatar string `json:"avatar"`
}

type CardsUpdate struct {
	Cards []Card `json:"cards"`
}

// GameCardUpdate either replaces the whole layout (Cards or Rows) or sets a
// single card addressed by Index or by Row/Col.
type GameCardUpdate struct {
	Cards []Card   `json:"cards,omitempty"`
	Rows  [][]Card `json:"rows,omitempty"`
	Index *int     `json:"index,omitempty"`
	Row   *int     `json:"row,omitempty"`
	Col   *int     `json:"col,omitempty"`
	Card  *Card    `json:"card,omitempty"`
}

type DrinkUpdate struct {
	Drinks *int `json:"drinks"`
}

type PlayerDrinkUpdate struct {
	UserID string `json:"userId"`
	Drinks *int   `json:"drinks"`
}

type TurnInfoUpdate struct {
	CurrentPlayer  *string `json:"currentPlayer,omitempty"`
	Round          *int    `json:"round,omitempty"`
	AllCardsPlayed *bool   `json:"allCardsPlayed,omitempty"`
	IsRowFlipped   *bool   `json:"isRowFlipped,omitempty"`
}

type BusfahrerUpdate struct {
	Busfahrer string `json:"busfahrer"`
}

type KickUpdate struct {
	UserID string `json:"userId"`
}

type NewGameUpdate struct {
	GameID string `json:"gameId"`
}

type ChatUpdate struct {
	Message *ChatMessage `json:"message"`
}
