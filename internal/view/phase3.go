package view

import (
	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// Phase3 is the diamond phase: the busfahrer flips row after row.
type Phase3 struct {
	Table
	Diamond   [][]types.Card
	Busfahrer string
	HasToEx   bool
	Finished  bool
}

func NewPhase3(gameID string) Phase3 { return Phase3{Table: NewTable(gameID)} }

func (s Phase3) IsBusfahrer() bool { return s.SelfID != "" && s.Busfahrer == s.SelfID }

func (s Phase3) Stage() Stage {
	switch {
	case s.Terminal():
		return StageTransitioning
	case !s.Loaded:
		return StageLoading
	case s.Finished:
		return StageReadyForNext
	case s.IsSpectator():
		return StageIdle
	case s.IsBusfahrer():
		return StageAwaitingFlip
	default:
		return StageIdle
	}
}

func (s Phase3) Apply(m types.PushMessage) (Phase3, []Effect) {
	if s.Terminal() {
		return s, nil
	}
	if t, eff, ok := s.applyCommon(m); ok {
		s.Table = t
		return s, eff
	}

	var eff []Effect
	switch m.Type {
	case types.EvtGameCardUpdate:
		var p types.GameCardUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		rows, err := patchRows(s.Diamond, p)
		if err != nil {
			return s, []Effect{Malformed{Type: m.Type, Err: err}}
		}
		s.Diamond = rows

	case types.EvtBusfahrerUpdate:
		var p types.BusfahrerUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Busfahrer = p.Busfahrer

	case types.EvtTurnInfoUpdate:
		var p types.TurnInfoUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyTurn(p.CurrentPlayer, p.Round)

	case types.EvtGameUpdate:
		var p types.GameUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyGame(p)
		if p.HasToEx != nil {
			s.HasToEx = *p.HasToEx
		}
		if p.Finished != nil {
			s.Finished = *p.Finished
		}

	case types.EvtNewGameUpdate:
		var p types.NewGameUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		if p.GameID == "" {
			return s, missing(m, "gameId")
		}
		s.Table, eff = s.transition(GamePath(p.GameID))
	}
	return s, eff
}

func (s Phase3) FlipRow() (Command, bool) {
	if s.Stage() != StageAwaitingFlip {
		return none()
	}
	return do(api.FlipRow(s.GameID, 3))
}
