package view

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// LobbyList is the list of games waiting for players.
type LobbyList struct {
	Games  []types.GameSummary
	Loaded bool
}

func (s LobbyList) Stage() Stage {
	if !s.Loaded {
		return StageLoading
	}
	return StageIdle
}

func (s LobbyList) Apply(m types.PushMessage) (LobbyList, []Effect) {
	switch m.Type {
	case types.EvtLobbysUpdate:
		var p types.LobbysUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		if p.Games == nil {
			return s, missing(m, "games")
		}
		s.Games = p.Games
		return s, nil

	case types.EvtLobbyUpdate:
		var p types.LobbyUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		id := p.ID
		if p.Game != nil && p.Game.ID != "" {
			id = p.Game.ID
		}
		if id == "" {
			return s, missing(m, "game id")
		}
		i := slices.IndexFunc(s.Games, func(g types.GameSummary) bool { return g.ID == id })
		switch {
		case p.Removed || p.Game == nil:
			if i >= 0 {
				s.Games = slices.Delete(slices.Clone(s.Games), i, i+1)
			}
		case i >= 0:
			s.Games = slices.Clone(s.Games)
			s.Games[i] = *p.Game
		default:
			s.Games = append(slices.Clone(s.Games), *p.Game)
		}
		return s, nil
	}
	return s, nil
}

func (s LobbyList) CreateGame(name string, private bool) (Command, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return none()
	}
	return Command{
		Request: api.CreateGame(name, private),
		Then: func(body json.RawMessage) []Effect {
			var res api.CreateGameResult
			if err := json.Unmarshal(body, &res); err != nil || res.GameID == "" {
				return []Effect{Notify{Popup: notify.Popup{
					Title:   "Create game",
					Message: "The server did not return a game id.",
					Kind:    notify.KindError,
				}}}
			}
			return []Effect{Navigate{Path: GamePath(res.GameID)}}
		},
	}, true
}

// JoinGame also accepts ids of private games that are not listed.
func (s LobbyList) JoinGame(gameID string) (Command, bool) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return none()
	}
	if i := slices.IndexFunc(s.Games, func(g types.GameSummary) bool { return g.ID == gameID }); i >= 0 {
		g := s.Games[i]
		if g.Started || (g.MaxPlayers > 0 && g.Players >= g.MaxPlayers) {
			return none()
		}
	}
	return Command{Request: api.JoinGame(gameID), Then: navigateThen(GamePath(gameID), false)}, true
}
