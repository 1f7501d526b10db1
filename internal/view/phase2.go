package view

import (
	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// ConcurrentRound is the phase 2 round in which every player may lay cards
// on the flipped row, not only the current player.
const ConcurrentRound = 2

// Phase2 is the row phase.
type Phase2 struct {
	Table
	RowCards       [][]types.Card
	IsRowFlipped   bool
	AllCardsPlayed bool
	Busfahrer      string
}

func NewPhase2(gameID string) Phase2 { return Phase2{Table: NewTable(gameID)} }

func (s Phase2) Stage() Stage {
	switch {
	case s.Terminal():
		return StageTransitioning
	case !s.Loaded:
		return StageLoading
	case s.AllCardsPlayed:
		return StageReadyForNext
	case s.IsSpectator():
		return StageIdle
	case s.IsCurrentPlayer() && !s.IsRowFlipped:
		return StageAwaitingFlip
	case s.IsRowFlipped && (s.IsCurrentPlayer() || s.Round == ConcurrentRound):
		return StageAwaitingPlay
	default:
		return StageIdle
	}
}

func (s Phase2) Apply(m types.PushMessage) (Phase2, []Effect) {
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
		rows, err := patchRows(s.RowCards, p)
		if err != nil {
			return s, []Effect{Malformed{Type: m.Type, Err: err}}
		}
		s.RowCards = rows

	case types.EvtTurnInfoUpdate:
		var p types.TurnInfoUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyTurn(p.CurrentPlayer, p.Round)
		if p.IsRowFlipped != nil {
			s.IsRowFlipped = *p.IsRowFlipped
		}
		if p.AllCardsPlayed != nil {
			s.AllCardsPlayed = *p.AllCardsPlayed
		}

	case types.EvtGameUpdate:
		var p types.GameUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyGame(p)
		if p.IsRowFlipped != nil {
			s.IsRowFlipped = *p.IsRowFlipped
		}
		if p.AllCardsPlayed != nil {
			s.AllCardsPlayed = *p.AllCardsPlayed
		}

	case types.EvtBusfahrerUpdate:
		var p types.BusfahrerUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Busfahrer = p.Busfahrer

	case types.EvtPhase3:
		s.Table, eff = s.transition(PhasePath(3, s.GameID))
	}
	return s, eff
}

func (s Phase2) FlipRow() (Command, bool) {
	if s.Stage() != StageAwaitingFlip {
		return none()
	}
	return do(api.FlipRow(s.GameID, 2))
}

// LayCard is allowed for the current player once the row is flipped, and
// for everyone in ConcurrentRound.
func (s Phase2) LayCard(cardIndex int) (Command, bool) {
	if s.Stage() != StageAwaitingPlay || !s.handIndex(cardIndex) {
		return none()
	}
	return do(api.LayCardPhase(s.GameID, cardIndex))
}

func (s Phase2) NextPlayer() (Command, bool) {
	if s.Terminal() || !s.IsCurrentPlayer() || !s.IsRowFlipped || s.AllCardsPlayed {
		return none()
	}
	return do(api.NextPlayerPhase(s.GameID))
}

func (s Phase2) StartPhase3() (Command, bool) {
	if s.Stage() != StageReadyForNext || !s.IsGameMaster {
		return none()
	}
	return do(api.StartPhase3(s.GameID))
}
