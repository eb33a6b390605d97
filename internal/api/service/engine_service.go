package service

import (
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
)

// EngineService exposes the stateless board evaluator and move selector.
type EngineService interface {
	Evaluate(board game.Board) *models.EvaluateResponse
	Move(board game.Board, difficulty bot.Difficulty, mark game.PlayerMark) *models.MoveResponse
}

type engineService struct {
	calculator session.MoveCalculator
}

// NewEngineService creates a new EngineService.
func NewEngineService(calculator session.MoveCalculator) EngineService {
	return &engineService{calculator: calculator}
}

func (s *engineService) Evaluate(board game.Board) *models.EvaluateResponse {
	result := game.Evaluate(board)
	return &models.EvaluateResponse{
		Winner: result.Winner,
		Line:   result.Line,
		Full:   game.IsBoardFull(board),
		Draw:   game.IsDraw(board),
	}
}

func (s *engineService) Move(board game.Board, difficulty bot.Difficulty, mark game.PlayerMark) *models.MoveResponse {
	if mark == game.None {
		mark = session.ComputerMark
	}
	cell := s.calculator.CalculateNextMove(board, mark, difficulty)
	return &models.MoveResponse{Cell: cell, NoMove: cell == bot.NoMove}
}
