package session

import (
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"errors"
	"time"
)

// Mode selects who plays the second mark.
type Mode string

// State is the session's position in the mode/turn state machine.
type State string

const (
	ModeNone           Mode = ""
	ModePlayerVsPlayer Mode = "pvp"
	ModeVsComputer     Mode = "pvc"

	StateModeUnselected    State = "mode_unselected"
	StateDifficultyPending State = "difficulty_pending"
	StateInProgress        State = "in_progress"
	StateWon               State = "won"
	StateDrawn             State = "drawn"

	// FirstMark always opens; the computer always answers with ComputerMark.
	FirstMark    = game.PlayerX
	ComputerMark = game.PlayerO

	DefaultDifficulty = bot.Medium
)

var (
	ErrWrongState  = errors.New("action not allowed in current state")
	ErrInvalidMode = errors.New("invalid game mode")
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrOccupied    = errors.New("cell already occupied")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNoMove      = errors.New("no move available")
)

// MoveCalculator chooses a cell for mark, or bot.NoMove.
type MoveCalculator interface {
	CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty bot.Difficulty) int
}

// Session is the explicit state of one game client. Every successful
// transition bumps Version, so work scheduled against an older Version is stale.
type Session struct {
	ID         string          `json:"id"`
	Mode       Mode            `json:"mode"`
	Difficulty bot.Difficulty  `json:"difficulty"`
	State      State           `json:"state"`
	Board      game.Board      `json:"board"`
	Turn       game.PlayerMark `json:"turn"`
	Winner     game.PlayerMark `json:"winner"`
	Line       *game.Line      `json:"line"`
	Version    uint64          `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// New returns a session waiting for a mode choice.
func New(id string) *Session {
	return &Session{
		ID:         id,
		Difficulty: DefaultDifficulty,
		State:      StateModeUnselected,
		Turn:       FirstMark,
		UpdatedAt:  time.Now().UTC(),
	}
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Line != nil {
		l := *s.Line
		c.Line = &l
	}
	return &c
}

// SelectMode leaves the mode screen. Player-vs-player starts at once;
// player-vs-computer waits for a difficulty.
func (s *Session) SelectMode(m Mode) error {
	if s.State != StateModeUnselected {
		return ErrWrongState
	}
	switch m {
	case ModePlayerVsPlayer:
		s.Mode = m
		s.clearBoard()
		s.State = StateInProgress
	case ModeVsComputer:
		s.Mode = m
		s.clearBoard()
		s.State = StateDifficultyPending
	default:
		return ErrInvalidMode
	}
	s.touch()
	return nil
}

// SelectDifficulty may be changed any number of times before Start.
func (s *Session) SelectDifficulty(d bot.Difficulty) error {
	if s.State != StateDifficultyPending {
		return ErrWrongState
	}
	if !d.Valid() {
		return bot.ErrUnknownDifficulty
	}
	s.Difficulty = d
	s.touch()
	return nil
}

// Start begins a player-vs-computer game.
func (s *Session) Start() error {
	if s.State != StateDifficultyPending {
		return ErrWrongState
	}
	s.clearBoard()
	s.State = StateInProgress
	s.touch()
	return nil
}

// Place applies a human placement for the side to move.
func (s *Session) Place(cell int) error {
	if s.State != StateInProgress {
		return ErrWrongState
	}
	if s.AwaitingComputer() {
		return ErrNotYourTurn
	}
	return s.apply(cell)
}

// PlaceComputerMove asks calc for the computer's cell and applies it.
func (s *Session) PlaceComputerMove(calc MoveCalculator) (int, error) {
	if !s.AwaitingComputer() {
		return bot.NoMove, ErrWrongState
	}
	cell := calc.CalculateNextMove(s.Board, ComputerMark, s.Difficulty)
	if cell == bot.NoMove {
		return cell, ErrNoMove
	}
	return cell, s.apply(cell)
}

// Reset clears the board. A computer game goes back to difficulty selection.
func (s *Session) Reset() {
	s.clearBoard()
	switch s.Mode {
	case ModePlayerVsPlayer:
		s.State = StateInProgress
	case ModeVsComputer:
		s.State = StateDifficultyPending
	default:
		s.State = StateModeUnselected
	}
	s.touch()
}

// ChangeMode returns to the mode screen.
func (s *Session) ChangeMode() {
	s.clearBoard()
	s.Mode = ModeNone
	s.State = StateModeUnselected
	s.touch()
}

// AwaitingComputer reports whether the computer owes the next move.
func (s *Session) AwaitingComputer() bool {
	return s.Mode == ModeVsComputer && s.State == StateInProgress && s.Turn == ComputerMark
}

// Concluded reports a won or drawn game.
func (s *Session) Concluded() bool {
	return s.State == StateWon || s.State == StateDrawn
}

func (s *Session) apply(cell int) error {
	if !game.InBounds(cell) {
		return ErrOutOfBounds
	}
	if s.Board[cell] != game.None {
		return ErrOccupied
	}

	s.Board[cell] = s.Turn
	result := game.Evaluate(s.Board)
	switch {
	case result.Won():
		s.State = StateWon
		s.Winner = result.Winner
		s.Line = result.Line
	case game.IsBoardFull(s.Board):
		s.State = StateDrawn
	default:
		s.Turn = game.Opponent(s.Turn)
	}
	s.touch()
	return nil
}

func (s *Session) clearBoard() {
	s.Board = game.Board{}
	s.Turn = FirstMark
	s.Winner = game.None
	s.Line = nil
}

func (s *Session) touch() {
	s.Version++
	s.UpdatedAt = time.Now().UTC()
}
