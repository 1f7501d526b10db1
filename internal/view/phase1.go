package view

import (
	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// Phase1 is the pyramid phase. Pyramid is flat; Rows cuts it into the
// triangular layout.
type Phase1 struct {
	Table
	Pyramid        []types.Card
	AllCardsPlayed bool
}

func NewPhase1(gameID string) Phase1 { return Phase1{Table: NewTable(gameID)} }

func (s Phase1) Rows() [][]types.Card { return Rows(s.Pyramid) }

func (s Phase1) Stage() Stage {
	switch {
	case s.Terminal():
		return StageTransitioning
	case !s.Loaded:
		return StageLoading
	case s.AllCardsPlayed:
		return StageReadyForNext
	case s.IsSpectator():
		return StageIdle
	case s.IsCurrentPlayer():
		return StageAwaitingPlay
	default:
		return StageIdle
	}
}

func (s Phase1) Apply(m types.PushMessage) (Phase1, []Effect) {
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
		cards, err := patchPyramid(s.Pyramid, p)
		if err != nil {
			return s, []Effect{Malformed{Type: m.Type, Err: err}}
		}
		s.Pyramid = cards

	case types.EvtTurnInfoUpdate:
		var p types.TurnInfoUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyTurn(p.CurrentPlayer, p.Round)
		if p.AllCardsPlayed != nil {
			s.AllCardsPlayed = *p.AllCardsPlayed
		}

	case types.EvtGameUpdate:
		var p types.GameUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		s.Table = s.applyGame(p)
		if p.AllCardsPlayed != nil {
			s.AllCardsPlayed = *p.AllCardsPlayed
		}

	case types.EvtPhase2:
		s.Table, eff = s.transition(PhasePath(2, s.GameID))

	case types.EvtPhase3:
		s.Table, eff = s.transition(PhasePath(3, s.GameID))
	}
	return s, eff
}

// LayCard lays the hand card at cardIndex onto the card revealed this round.
func (s Phase1) LayCard(cardIndex int) (Command, bool) {
	if s.Stage() != StageAwaitingPlay || !s.handIndex(cardIndex) {
		return none()
	}
	target, ok := ActiveIndex(s.Round)
	if !ok {
		return none()
	}
	return do(api.LayCard(s.GameID, cardIndex, target))
}

func (s Phase1) NextPlayer() (Command, bool) {
	if s.Stage() != StageAwaitingPlay {
		return none()
	}
	return do(api.NextPlayer(s.GameID))
}

func (s Phase1) StartPhase2() (Command, bool) {
	if s.Stage() != StageReadyForNext || !s.IsGameMaster {
		return none()
	}
	return do(api.StartPhase2(s.GameID))
}
