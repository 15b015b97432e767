package game

import (
	"math/rand"
	"sort"
)

// CardSize is the number of cells on a bingo card (5x5, no free space).
const CardSize = 25

// Column ranges for B/I/N/G/O, in layout order.
var columnRanges = [5][2]int{
	{1, 15},
	{16, 30},
	{31, 45},
	{46, 60},
	{61, 75},
}

// winPatterns is the canonical enumeration: 5 rows, then 5 columns, then the
// two diagonals. The order is part of the contract — when several lines
// complete on the same call, the first one here is the one reported.
var winPatterns = [12][5]int{
	{0, 1, 2, 3, 4},
	{5, 6, 7, 8, 9},
	{10, 11, 12, 13, 14},
	{15, 16, 17, 18, 19},
	{20, 21, 22, 23, 24},
	{0, 5, 10, 15, 20},
	{1, 6, 11, 16, 21},
	{2, 7, 12, 17, 22},
	{3, 8, 13, 18, 23},
	{4, 9, 14, 19, 24},
	{0, 6, 12, 18, 24},
	{4, 8, 12, 16, 20},
}

type WinType string

const (
	WinNone      WinType = "none"
	WinLine      WinType = "line"
	WinFullHouse WinType = "full_house"
)

type WinResult struct {
	Type    WinType `json:"type"`
	Pattern []int   `json:"pattern,omitempty"`
}

// GenerateCard deals 25 numbers: 5 per column, drawn uniformly without
// replacement from that column's range, sorted ascending, columns
// concatenated in B/I/N/G/O order.
func GenerateCard() []int {
	card := make([]int, 0, CardSize)
	for _, rng := range columnRanges {
		lo, hi := rng[0], rng[1]
		span := hi - lo + 1
		perm := rand.Perm(span)[:5]
		col := make([]int, 5)
		for i, p := range perm {
			col[i] = lo + p
		}
		sort.Ints(col)
		card = append(card, col...)
	}
	return card
}

// MarkCard maps a card against the called numbers, producing the 25-cell
// marked layout CheckWin evaluates.
func MarkCard(card []int, called []int) []bool {
	calledSet := make(map[int]bool, len(called))
	for _, n := range called {
		calledSet[n] = true
	}
	marked := make([]bool, len(card))
	for i, n := range card {
		marked[i] = calledSet[n]
	}
	return marked
}

// CheckWin evaluates the 12 line patterns (only when no line has been claimed
// yet) and full house (always, independent of the line claim).
func CheckWin(marked []bool, lineAlreadyClaimed bool) WinResult {
	if len(marked) != CardSize {
		return WinResult{Type: WinNone}
	}

	full := true
	for _, m := range marked {
		if !m {
			full = false
			break
		}
	}
	if full {
		return WinResult{Type: WinFullHouse}
	}

	if lineAlreadyClaimed {
		return WinResult{Type: WinNone}
	}

	for _, pattern := range winPatterns {
		complete := true
		for _, idx := range pattern {
			if !marked[idx] {
				complete = false
				break
			}
		}
		if complete {
			return WinResult{Type: WinLine, Pattern: append([]int(nil), pattern[:]...)}
		}
	}

	return WinResult{Type: WinNone}
}
