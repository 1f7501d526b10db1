package view

import (
	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// GameLobby is the waiting room of one game before phase 1 starts.
type GameLobby struct {
	Table
}

func NewGameLobby(gameID string) GameLobby { return GameLobby{Table: NewTable(gameID)} }

func (s GameLobby) Stage() Stage {
	switch {
	case s.Terminal():
		return StageTransitioning
	case !s.Loaded:
		return StageLoading
	case s.IsGameMaster:
		return StageReadyForNext
	default:
		return StageIdle
	}
}

func (s GameLobby) Apply(m types.PushMessage) (GameLobby, []Effect) {
	if s.Terminal() {
		return s, nil
	}
	if t, eff, ok := s.applyCommon(m); ok {
		s.Table = t
		return s, eff
	}

	var eff []Effect
	switch {
	case m.Type == types.EvtGameUpdate:
		var p types.GameUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyGame(p)

	case m.Type == types.EvtTurnInfoUpdate:
		var p types.TurnInfoUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyTurn(p.CurrentPlayer, p.Round)

	case types.IsStart(m.Type):
		s.Table, eff = s.transition(PhasePath(1, s.GameID))

	case m.Type == types.EvtPhase2:
		s.Table, eff = s.transition(PhasePath(2, s.GameID))

	case m.Type == types.EvtPhase3:
		s.Table, eff = s.transition(PhasePath(3, s.GameID))
	}
	return s, eff
}

// MinPlayers is the smallest table a game can be started with.
const MinPlayers = 2

func (s GameLobby) StartGame() (Command, bool) {
	if s.Terminal() || !s.IsGameMaster || len(s.Players) < MinPlayers {
		return none()
	}
	return do(api.StartGame(s.GameID))
}

func (s GameLobby) KickPlayer(playerID string) (Command, bool) {
	if s.Terminal() || !s.IsGameMaster || playerID == "" || playerID == s.SelfID {
		return none()
	}
	if _, ok := s.Player(playerID); !ok {
		return none()
	}
	return do(api.KickPlayer(s.GameID, playerID))
}
