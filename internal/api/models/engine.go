package models

import (
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
)

// EvaluateRequest asks for the outcome of a board.
type EvaluateRequest struct {
	Board []game.PlayerMark `json:"board" binding:"required,len=9,dive,mark"`
}

// EvaluateResponse reports the winner, if any, and whether the board is drawn.
type EvaluateResponse struct {
	Winner game.PlayerMark `json:"winner"`
	Line   *game.Line      `json:"line"`
	Full   bool            `json:"full"`
	Draw   bool            `json:"draw"`
}

// MoveRequest asks the computer for a cell. Mark defaults to O.
type MoveRequest struct {
	Board      []game.PlayerMark `json:"board" binding:"required,len=9,dive,mark"`
	Difficulty bot.Difficulty    `json:"difficulty" binding:"required,difficulty"`
	Mark       game.PlayerMark   `json:"mark" binding:"omitempty,oneof=X O"`
}

// MoveResponse carries the chosen cell; NoMove is set on a full board.
type MoveResponse struct {
	Cell   int  `json:"cell"`
	NoMove bool `json:"no_move"`
}
