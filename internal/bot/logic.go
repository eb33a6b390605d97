package bot

import (
	"ctchen222/tictactoe/internal/game"
	"math/rand"
)

// NoMove is returned when the board has no empty cell.
const NoMove = -1

// BotMoveCalculator implements session.MoveCalculator.
// IntN picks a uniform index in [0, n); nil means math/rand.
type BotMoveCalculator struct {
	IntN func(n int) int
}

// CalculateNextMove picks the cell for botMark using the given tier.
func (c *BotMoveCalculator) CalculateNextMove(board game.Board, botMark game.PlayerMark, difficulty Difficulty) int {
	intN := rand.Intn
	if c != nil && c.IntN != nil {
		intN = c.IntN
	}

	switch difficulty {
	case Easy:
		return easyMove(board, intN)
	case Medium:
		return mediumMove(board, botMark, intN)
	case Hard:
		return hardMove(board, botMark, intN)
	default:
		return hardMove(board, botMark, intN)
	}
}

// CalculateNextMove calls the default calculator.
func CalculateNextMove(board game.Board, botMark game.PlayerMark, difficulty Difficulty) int {
	return (&BotMoveCalculator{}).CalculateNextMove(board, botMark, difficulty)
}

// SelectMove picks the automated opponent's cell. The opponent always plays O.
func SelectMove(board game.Board, difficulty Difficulty) int {
	return CalculateNextMove(board, game.PlayerO, difficulty)
}

// easyMove makes a completely random move.
func easyMove(board game.Board, intN func(int) int) int {
	return randomCell(game.EmptyCells(board), intN)
}

// mediumMove wins, blocks, takes the center, then a corner, then an edge.
func mediumMove(board game.Board, botMark game.PlayerMark, intN func(int) int) int {
	if cell, ok := tacticalMove(board, botMark); ok {
		return cell
	}
	return cornerThenEdge(board, intN)
}

// hardMove plays the same policy as mediumMove.
func hardMove(board game.Board, botMark game.PlayerMark, intN func(int) int) int {
	if cell, ok := tacticalMove(board, botMark); ok {
		return cell
	}
	return cornerThenEdge(board, intN)
}

// tacticalMove covers the deterministic steps shared by medium and hard.
func tacticalMove(board game.Board, botMark game.PlayerMark) (int, bool) {
	// 1. Win: Check if the bot can win in the next move
	if cell, ok := findWinningMove(board, botMark); ok {
		return cell, true
	}

	// 2. Block: Check if the opponent is about to win and block them
	if cell, ok := findWinningMove(board, game.Opponent(botMark)); ok {
		return cell, true
	}

	// 3. Center: Take the center if it's available
	if board[game.Center] == game.None {
		return game.Center, true
	}
	return NoMove, false
}

func cornerThenEdge(board game.Board, intN func(int) int) int {
	if cell := randomCell(emptyOf(board, game.Corners), intN); cell != NoMove {
		return cell
	}
	return randomCell(emptyOf(board, game.Edges), intN)
}

// findWinningMove returns the lowest empty cell that completes a line for mark.
// board is a copy, so trial placements never reach the caller.
func findWinningMove(board game.Board, mark game.PlayerMark) (int, bool) {
	for i := range board {
		if board[i] != game.None {
			continue
		}
		board[i] = mark
		won := game.Evaluate(board).Winner == mark
		board[i] = game.None
		if won {
			return i, true
		}
	}
	return NoMove, false
}

func emptyOf(board game.Board, cells [4]int) []int {
	var empty []int
	for _, c := range cells {
		if board[c] == game.None {
			empty = append(empty, c)
		}
	}
	return empty
}

func randomCell(cells []int, intN func(int) int) int {
	if len(cells) == 0 {
		return NoMove
	}
	return cells[intN(len(cells))]
}
