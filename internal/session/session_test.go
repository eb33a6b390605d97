package session

import (
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCalculator returns the queued cells in order.
type scriptedCalculator struct {
	cells []int
	calls int
}

func (c *scriptedCalculator) CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty bot.Difficulty) int {
	cell := c.cells[c.calls]
	c.calls++
	return cell
}

func newComputerGame(t *testing.T, d bot.Difficulty) *Session {
	t.Helper()
	s := New("s1")
	require.NoError(t, s.SelectMode(ModeVsComputer))
	require.NoError(t, s.SelectDifficulty(d))
	require.NoError(t, s.Start())
	return s
}

func TestNewSession(t *testing.T) {
	s := New("abc")
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, StateModeUnselected, s.State)
	assert.Equal(t, ModeNone, s.Mode)
	assert.Equal(t, bot.Medium, s.Difficulty)
	assert.Equal(t, game.PlayerX, s.Turn)
	assert.Equal(t, game.Board{}, s.Board)
	assert.Zero(t, s.Version)
}

func TestSelectMode(t *testing.T) {
	t.Run("player vs player starts immediately", func(t *testing.T) {
		s := New("s")
		require.NoError(t, s.SelectMode(ModePlayerVsPlayer))
		assert.Equal(t, StateInProgress, s.State)
		assert.False(t, s.AwaitingComputer())
	})

	t.Run("player vs computer waits for difficulty", func(t *testing.T) {
		s := New("s")
		require.NoError(t, s.SelectMode(ModeVsComputer))
		assert.Equal(t, StateDifficultyPending, s.State)
		assert.ErrorIs(t, s.Place(0), ErrWrongState)
	})

	t.Run("unknown mode", func(t *testing.T) {
		s := New("s")
		assert.ErrorIs(t, s.SelectMode(Mode("online")), ErrInvalidMode)
		assert.Equal(t, StateModeUnselected, s.State)
		assert.Zero(t, s.Version)
	})

	t.Run("only from the mode screen", func(t *testing.T) {
		s := New("s")
		require.NoError(t, s.SelectMode(ModePlayerVsPlayer))
		assert.ErrorIs(t, s.SelectMode(ModeVsComputer), ErrWrongState)
	})
}

func TestSelectDifficulty(t *testing.T) {
	s := New("s")
	assert.ErrorIs(t, s.SelectDifficulty(bot.Hard), ErrWrongState)

	require.NoError(t, s.SelectMode(ModeVsComputer))
	assert.ErrorIs(t, s.SelectDifficulty(bot.Difficulty("expert")), bot.ErrUnknownDifficulty)
	require.NoError(t, s.SelectDifficulty(bot.Easy))
	require.NoError(t, s.SelectDifficulty(bot.Hard))
	assert.Equal(t, bot.Hard, s.Difficulty)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.SelectDifficulty(bot.Easy), ErrWrongState)
	assert.ErrorIs(t, s.Start(), ErrWrongState)
}

func TestPlayerVsPlayerWin(t *testing.T) {
	s := New("s")
	require.NoError(t, s.SelectMode(ModePlayerVsPlayer))

	// X: 0, 1, 2 ; O: 3, 4
	for _, cell := range []int{0, 3, 1, 4} {
		require.NoError(t, s.Place(cell))
		assert.Equal(t, StateInProgress, s.State)
	}
	assert.Equal(t, game.PlayerX, s.Turn)
	require.NoError(t, s.Place(2))

	assert.Equal(t, StateWon, s.State)
	assert.Equal(t, game.PlayerX, s.Winner)
	require.NotNil(t, s.Line)
	assert.Equal(t, game.Line{0, 1, 2}, *s.Line)
	assert.True(t, s.Concluded())
	assert.ErrorIs(t, s.Place(5), ErrWrongState)
}

func TestPlayerVsPlayerDraw(t *testing.T) {
	s := New("s")
	require.NoError(t, s.SelectMode(ModePlayerVsPlayer))

	// Produces X O X / X O O / O X X
	for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		require.NoError(t, s.Place(cell))
	}
	assert.Equal(t, StateDrawn, s.State)
	assert.Equal(t, game.None, s.Winner)
	assert.Nil(t, s.Line)
	assert.True(t, s.Concluded())
}

func TestPlaceRejectsBadCells(t *testing.T) {
	s := New("s")
	require.NoError(t, s.SelectMode(ModePlayerVsPlayer))
	assert.ErrorIs(t, s.Place(-1), ErrOutOfBounds)
	assert.ErrorIs(t, s.Place(9), ErrOutOfBounds)

	require.NoError(t, s.Place(4))
	version := s.Version
	assert.ErrorIs(t, s.Place(4), ErrOccupied)
	assert.Equal(t, version, s.Version, "failed placement must not bump the version")
	assert.Equal(t, game.PlayerO, s.Turn)
}

func TestComputerTurn(t *testing.T) {
	s := newComputerGame(t, bot.Hard)
	assert.False(t, s.AwaitingComputer())

	_, err := s.PlaceComputerMove(&scriptedCalculator{cells: []int{4}})
	assert.ErrorIs(t, err, ErrWrongState)

	require.NoError(t, s.Place(0))
	assert.True(t, s.AwaitingComputer())
	assert.ErrorIs(t, s.Place(1), ErrNotYourTurn)

	cell, err := s.PlaceComputerMove(&bot.BotMoveCalculator{})
	require.NoError(t, err)
	assert.Equal(t, 4, cell)
	assert.Equal(t, game.PlayerO, s.Board[4])
	assert.Equal(t, game.PlayerX, s.Turn)
}

func TestComputerWins(t *testing.T) {
	s := newComputerGame(t, bot.Medium)
	calc := &scriptedCalculator{cells: []int{3, 4, 5}}
	for _, cell := range []int{0, 1, 8} {
		require.NoError(t, s.Place(cell))
		_, err := s.PlaceComputerMove(calc)
		require.NoError(t, err)
	}
	assert.Equal(t, StateWon, s.State)
	assert.Equal(t, ComputerMark, s.Winner)
	assert.Equal(t, game.Line{3, 4, 5}, *s.Line)
	assert.False(t, s.AwaitingComputer())
}

func TestComputerNoMove(t *testing.T) {
	s := newComputerGame(t, bot.Easy)
	require.NoError(t, s.Place(0))
	before := s.Version

	cell, err := s.PlaceComputerMove(&scriptedCalculator{cells: []int{bot.NoMove}})
	assert.Equal(t, bot.NoMove, cell)
	assert.ErrorIs(t, err, ErrNoMove)
	assert.Equal(t, before, s.Version)
}

func TestReset(t *testing.T) {
	t.Run("computer game returns to difficulty selection", func(t *testing.T) {
		s := newComputerGame(t, bot.Easy)
		require.NoError(t, s.Place(0))
		before := s.Version
		s.Reset()
		assert.Equal(t, StateDifficultyPending, s.State)
		assert.Equal(t, game.Board{}, s.Board)
		assert.Equal(t, game.PlayerX, s.Turn)
		assert.Equal(t, bot.Easy, s.Difficulty)
		assert.Greater(t, s.Version, before)
		assert.False(t, s.AwaitingComputer())
	})

	t.Run("player vs player restarts", func(t *testing.T) {
		s := New("s")
		require.NoError(t, s.SelectMode(ModePlayerVsPlayer))
		for _, cell := range []int{0, 3, 1, 4, 2} {
			require.NoError(t, s.Place(cell))
		}
		s.Reset()
		assert.Equal(t, StateInProgress, s.State)
		assert.Nil(t, s.Line)
		assert.Equal(t, game.None, s.Winner)
	})

	t.Run("mode screen stays put", func(t *testing.T) {
		s := New("s")
		s.Reset()
		assert.Equal(t, StateModeUnselected, s.State)
	})
}

func TestChangeMode(t *testing.T) {
	s := newComputerGame(t, bot.Hard)
	require.NoError(t, s.Place(0))
	s.ChangeMode()
	assert.Equal(t, StateModeUnselected, s.State)
	assert.Equal(t, ModeNone, s.Mode)
	assert.Equal(t, game.Board{}, s.Board)
	require.NoError(t, s.SelectMode(ModePlayerVsPlayer))
}

func TestClone(t *testing.T) {
	s := New("s")
	require.NoError(t, s.SelectMode(ModePlayerVsPlayer))
	for _, cell := range []int{0, 3, 1, 4, 2} {
		require.NoError(t, s.Place(cell))
	}
	c := s.Clone()
	c.Board[8] = game.PlayerO
	c.Line[0] = 7
	assert.Equal(t, game.None, s.Board[8])
	assert.Equal(t, 0, s.Line[0])
}
