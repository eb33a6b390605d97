package game

import (
	"errors"
	"fmt"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board boundaries
	CellMin   = 0
	CellMax   = 8
	CellCount = 9
	Center    = 4
)

var (
	ErrInvalidBoard = errors.New("board must have exactly 9 cells")
	ErrInvalidMark  = errors.New("invalid cell mark")
)

// Board is a 3x3 grid stored row-major: index = row*3 + col.
type Board [CellCount]PlayerMark

// Line is a triple of cell indices that wins when uniformly occupied.
type Line [3]int

// Lines holds the rows, columns and diagonals in evaluation order.
var Lines = [8]Line{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

var (
	Corners = [4]int{0, 2, 6, 8}
	Edges   = [4]int{1, 3, 5, 7}
)

// WinResult reports the completed line, if any. Winner is None exactly when Line is nil.
type WinResult struct {
	Winner PlayerMark `json:"winner"`
	Line   *Line      `json:"line"`
}

// Won reports whether a line was completed.
func (r WinResult) Won() bool {
	return r.Line != nil
}

// Valid reports whether m is one of the three legal cell values.
func (m PlayerMark) Valid() bool {
	return m == None || m == PlayerX || m == PlayerO
}

// Opponent returns the other player's mark. None has no opponent.
func Opponent(m PlayerMark) PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// ParseBoard builds a Board from a slice, rejecting wrong lengths and unknown marks.
func ParseBoard(cells []PlayerMark) (Board, error) {
	var b Board
	if len(cells) != CellCount {
		return b, fmt.Errorf("%w: got %d", ErrInvalidBoard, len(cells))
	}
	for i, m := range cells {
		if !m.Valid() {
			return b, fmt.Errorf("%w %q at cell %d", ErrInvalidMark, m, i)
		}
		b[i] = m
	}
	return b, nil
}

// Evaluate returns the first completed line in Lines order, or an empty result.
// A full board without a completed line also yields an empty result; callers
// decide draws with IsDraw.
func Evaluate(b Board) WinResult {
	for _, line := range Lines {
		m := b[line[0]]
		if m != None && m == b[line[1]] && m == b[line[2]] {
			l := line
			return WinResult{Winner: m, Line: &l}
		}
	}
	return WinResult{}
}

// IsBoardFull reports whether no empty cell remains.
func IsBoardFull(b Board) bool {
	for _, m := range b {
		if m == None {
			return false
		}
	}
	return true
}

// IsDraw reports a full board with no completed line.
func IsDraw(b Board) bool {
	return IsBoardFull(b) && !Evaluate(b).Won()
}

// EmptyCells lists the indices of empty cells in ascending order.
func EmptyCells(b Board) []int {
	cells := make([]int, 0, CellCount)
	for i, m := range b {
		if m == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// InBounds reports whether i addresses a cell.
func InBounds(i int) bool {
	return i >= CellMin && i <= CellMax
}
