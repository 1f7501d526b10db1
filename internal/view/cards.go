package view

import (
	"errors"
	"slices"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

var errCardAddress = errors.New("card address out of range")

// patchRows applies a gameCardUpdate to a row layout.
func patchRows(rows [][]types.Card, p types.GameCardUpdate) ([][]types.Card, error) {
	switch {
	case p.Rows != nil:
		return p.Rows, nil
	case p.Cards != nil:
		return [][]types.Card{p.Cards}, nil
	case p.Card == nil:
		return rows, errors.New("no cards in update")
	}

	row, col := 0, 0
	switch {
	case p.Row != nil && p.Col != nil:
		row, col = *p.Row, *p.Col
	case p.Index != nil:
		// Linear index over the rows in order.
		i := *p.Index
		for row = 0; row < len(rows) && i >= len(rows[row]); row++ {
			i -= len(rows[row])
		}
		col = i
	default:
		return rows, errors.New("card without address")
	}
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return rows, errCardAddress
	}

	out := slices.Clone(rows)
	out[row] = slices.Clone(rows[row])
	out[row][col] = *p.Card
	return out, nil
}

// patchPyramid applies a gameCardUpdate to the flat pyramid.
func patchPyramid(cards []types.Card, p types.GameCardUpdate) ([]types.Card, error) {
	switch {
	case p.Cards != nil:
		return p.Cards, nil
	case p.Rows != nil:
		return Flatten(p.Rows), nil
	case p.Card == nil:
		return cards, errors.New("no cards in update")
	}

	var (
		idx int
		ok  bool
	)
	switch {
	case p.Row != nil && p.Col != nil:
		idx, ok = Index(*p.Row, *p.Col)
	case p.Index != nil:
		idx, ok = *p.Index, *p.Index >= 0 && *p.Index < PyramidSize
	}
	if !ok {
		return cards, errCardAddress
	}

	out := slices.Clone(cards)
	if len(out) < PyramidSize {
		out = append(out, make([]types.Card, PyramidSize-len(out))...)
	}
	out[idx] = *p.Card
	return out, nil
}
