package screen

import (
	"context"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/guard"
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// fetch adapts a typed getter and a setter into a baseline fetch.
func fetch[S, T any](name string, get func(context.Context, *api.Client, Params) (T, error), set func(*S, T)) Baseline[S] {
	return Baseline[S]{
		Name: name,
		Fetch: func(ctx context.Context, c *api.Client, p Params) (func(S) S, error) {
			v, err := get(ctx, c, p)
			if err != nil {
				return nil, err
			}
			return func(st S) S {
				set(&st, v)
				return st
			}, nil
		},
	}
}

func byGame[T any](get func(*api.Client, context.Context, string) (T, error)) func(context.Context, *api.Client, Params) (T, error) {
	return func(ctx context.Context, c *api.Client, p Params) (T, error) { return get(c, ctx, p.GameID) }
}

func global[T any](get func(*api.Client, context.Context) (T, error)) func(context.Context, *api.Client, Params) (T, error) {
	return func(ctx context.Context, c *api.Client, _ Params) (T, error) { return get(c, ctx) }
}

func gameTopics(p Params) []types.Subscription {
	return []types.Subscription{types.GameTopic(p.GameID), types.GameChatTopic(p.GameID)}
}

// tableBaseline is what every game screen loads about the table itself.
func tableBaseline[S any](table func(*S) *view.Table) []Baseline[S] {
	return []Baseline[S]{
		fetch("players", byGame((*api.Client).GetPlayers), func(s *S, v []types.Player) { table(s).Players = v }),
		fetch("player-id", byGame((*api.Client).GetPlayerID), func(s *S, v string) { table(s).SelfID = v }),
		fetch("is-game-master", byGame((*api.Client).IsGameMaster), func(s *S, v bool) { table(s).IsGameMaster = v }),
	}
}

// turnBaseline adds what the phase screens need to know about the turn.
func turnBaseline[S any](table func(*S) *view.Table) []Baseline[S] {
	return append(tableBaseline(table),
		fetch("player-cards", byGame((*api.Client).GetPlayerCards), func(s *S, v []types.Card) { table(s).Hand = v }),
		fetch("round", byGame((*api.Client).GetRound), func(s *S, v int) { table(s).Round = v }),
		fetch("current-player", byGame((*api.Client).GetCurrentPlayer), func(s *S, v string) { table(s).CurrentPlayer = v }),
		fetch("drink-count", byGame((*api.Client).GetDrinkCount), func(s *S, v int) { table(s).DrinkCount = v }),
	)
}

var authGuard, gameGuard, lobbyGuard = &guard.Auth, &guard.Game, &guard.Lobby

func Home() Definition[view.LobbyList] {
	d := Lobbies()
	d.Name = "home"
	d.Guard = authGuard
	return d
}

func Lobbies() Definition[view.LobbyList] {
	return Definition[view.LobbyList]{
		Name:   "lobbies",
		Guard:  lobbyGuard,
		Init:   func(Params) view.LobbyList { return view.LobbyList{} },
		Topics: func(Params) []types.Subscription { return []types.Subscription{types.LobbyTopic()} },
		Reduce: view.LobbyList.Apply,
		Baseline: []Baseline[view.LobbyList]{
			fetch("waiting-games", global((*api.Client).GetWaitingGames), func(s *view.LobbyList, v []types.GameSummary) { s.Games = v }),
		},
		Ready: func(s view.LobbyList) view.LobbyList { s.Loaded = true; return s },
	}
}

func GameLobby() Definition[view.GameLobby] {
	table := func(s *view.GameLobby) *view.Table { return &s.Table }
	return Definition[view.GameLobby]{
		Name:     "game",
		Guard:    gameGuard,
		Init:     func(p Params) view.GameLobby { return view.NewGameLobby(p.GameID) },
		Topics:   gameTopics,
		Reduce:   view.GameLobby.Apply,
		Baseline: tableBaseline(table),
		Ready:    func(s view.GameLobby) view.GameLobby { s.Loaded = true; return s },
	}
}

func Phase1() Definition[view.Phase1] {
	table := func(s *view.Phase1) *view.Table { return &s.Table }
	return Definition[view.Phase1]{
		Name:   "phase1",
		Guard:  gameGuard,
		Init:   func(p Params) view.Phase1 { return view.NewPhase1(p.GameID) },
		Topics: gameTopics,
		Reduce: view.Phase1.Apply,
		Baseline: append(turnBaseline(table),
			fetch("game-cards", byGame((*api.Client).GetGameCards), func(s *view.Phase1, v []types.Card) { s.Pyramid = v }),
			fetch("all-cards-played", byGame((*api.Client).AllCardsPlayed), func(s *view.Phase1, v bool) { s.AllCardsPlayed = v }),
		),
		Ready: func(s view.Phase1) view.Phase1 { s.Loaded = true; return s },
	}
}

func Phase2() Definition[view.Phase2] {
	table := func(s *view.Phase2) *view.Table { return &s.Table }
	return Definition[view.Phase2]{
		Name:   "phase2",
		Guard:  gameGuard,
		Init:   func(p Params) view.Phase2 { return view.NewPhase2(p.GameID) },
		Topics: gameTopics,
		Reduce: view.Phase2.Apply,
		Baseline: append(turnBaseline(table),
			fetch("phase-cards", byGame((*api.Client).GetPhaseCards), func(s *view.Phase2, v [][]types.Card) { s.RowCards = v }),
			fetch("is-row-flipped", byGame((*api.Client).GetIsRowFlipped), func(s *view.Phase2, v bool) { s.IsRowFlipped = v }),
			fetch("all-cards-played", byGame((*api.Client).AllCardsPlayed), func(s *view.Phase2, v bool) { s.AllCardsPlayed = v }),
		),
		Ready: func(s view.Phase2) view.Phase2 { s.Loaded = true; return s },
	}
}

func Phase3() Definition[view.Phase3] {
	table := func(s *view.Phase3) *view.Table { return &s.Table }
	return Definition[view.Phase3]{
		Name:   "phase3",
		Guard:  gameGuard,
		Init:   func(p Params) view.Phase3 { return view.NewPhase3(p.GameID) },
		Topics: gameTopics,
		Reduce: view.Phase3.Apply,
		Baseline: append(turnBaseline(table),
			fetch("phase-cards", byGame((*api.Client).GetPhaseCards), func(s *view.Phase3, v [][]types.Card) { s.Diamond = v }),
			fetch("busfahrer", byGame((*api.Client).GetBusfahrer), func(s *view.Phase3, v string) { s.Busfahrer = v }),
			fetch("has-to-ex", byGame((*api.Client).GetHasToEx), func(s *view.Phase3, v bool) { s.HasToEx = v }),
		),
		Ready: func(s view.Phase3) view.Phase3 { s.Loaded = true; return s },
	}
}

func Friends() Definition[view.Friends] {
	return Definition[view.Friends]{
		Name:   "friends",
		Guard:  authGuard,
		Init:   func(Params) view.Friends { return view.Friends{} },
		Topics: func(Params) []types.Subscription { return []types.Subscription{types.ChatTopic(), types.AccountTopic()} },
		Reduce: view.Friends.Apply,
		Baseline: []Baseline[view.Friends]{
			fetch("account", global((*api.Client).GetAccount), func(s *view.Friends, v types.Account) { s.SelfID = v.ID }),
			fetch("friends", global((*api.Client).GetFriends), func(s *view.Friends, v []types.Friend) { s.Friends = v }),
			fetch("friend-requests", global((*api.Client).GetFriendRequests), func(s *view.Friends, v []types.FriendRequest) { s.Requests = v }),
			fetch("friend-code", global((*api.Client).GetFriendCode), func(s *view.Friends, v string) { s.FriendCode = v }),
		},
		Ready: func(s view.Friends) view.Friends { s.Loaded = true; return s },
	}
}

func Account() Definition[view.Account] {
	return Definition[view.Account]{
		Name:   "account",
		Guard:  authGuard,
		Init:   func(Params) view.Account { return view.Account{} },
		Topics: func(Params) []types.Subscription { return []types.Subscription{types.AccountTopic()} },
		Reduce: view.Account.Apply,
		Baseline: []Baseline[view.Account]{
			// click sound and card theme are patched after the account so
			// they are not overwritten by its zero values
			fetch("account", global((*api.Client).GetAccount), func(s *view.Account, v types.Account) {
				sound, theme := s.ClickSound, s.CardTheme
				s.Account = v
				if sound != "" {
					s.ClickSound = sound
				}
				if theme != "" {
					s.CardTheme = theme
				}
			}),
			fetch("click-sound", global((*api.Client).GetClickSound), func(s *view.Account, v string) { s.ClickSound = v }),
			fetch("card-theme", global((*api.Client).GetCardTheme), func(s *view.Account, v string) { s.CardTheme = v }),
		},
		Ready: func(s view.Account) view.Account { s.Loaded = true; return s },
	}
}
