package view

import "github.com/DoyleJ11/busfahrer-client/pkg/types"

// The phase 1 pyramid is a flat list of cards cut into triangular rows: row r
// holds r+1 cards starting at r*(r+1)/2. The server addresses cards by that
// linear index, so these functions must match its arithmetic exactly.

const PyramidRows = 5

const PyramidSize = PyramidRows * (PyramidRows + 1) / 2

// Tri is the n-th triangular number, the number of cards in the first n rows.
func Tri(n int) int { return n * (n + 1) / 2 }

func Index(row, col int) (int, bool) {
	if row < 0 || row >= PyramidRows || col < 0 || col > row {
		return 0, false
	}
	return row*(row+1)/2 + col, true
}

func Position(i int) (row, col int, ok bool) {
	if i < 0 || i >= PyramidSize {
		return 0, 0, false
	}
	for row = 0; Tri(row+1) <= i; row++ {
	}
	return row, i - Tri(row), true
}

// Rows slices cards into triangular rows. A short list yields a partial last row.
func Rows(cards []types.Card) [][]types.Card {
	var rows [][]types.Card
	for r := 0; Tri(r) < len(cards); r++ {
		end := min(Tri(r+1), len(cards))
		rows = append(rows, cards[Tri(r):end:end])
	}
	return rows
}

func Flatten(rows [][]types.Card) []types.Card {
	var out []types.Card
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// ActiveIndex is the pyramid card revealed in the given round (1-based):
// bottom row first, left to right, then upwards.
func ActiveIndex(round int) (int, bool) {
	if round < 1 || round > PyramidSize {
		return 0, false
	}
	k := round - 1
	for row := PyramidRows - 1; row >= 0; row-- {
		if k <= row {
			return Index(row, k)
		}
		k -= row + 1
	}
	return 0, false
}
