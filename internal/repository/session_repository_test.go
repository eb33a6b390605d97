package repository

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func wonSession(t *testing.T, id string) *session.Session {
	t.Helper()
	s := session.New(id)
	require.NoError(t, s.SelectMode(session.ModeVsComputer))
	require.NoError(t, s.SelectDifficulty(bot.Hard))
	require.NoError(t, s.Start())
	require.NoError(t, s.Place(0))
	_, err := s.PlaceComputerMove(&bot.BotMoveCalculator{})
	require.NoError(t, err)
	return s
}

// exerciseRepository checks the behaviour every backend shares.
func exerciseRepository(t *testing.T, repo SessionRepository) {
	ctx := context.Background()

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		s := wonSession(t, "rt")
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.FindByID(ctx, "rt")
		require.NoError(t, err)
		assert.Equal(t, s.Board, got.Board)
		assert.Equal(t, s.Mode, got.Mode)
		assert.Equal(t, s.Difficulty, got.Difficulty)
		assert.Equal(t, s.State, got.State)
		assert.Equal(t, s.Turn, got.Turn)
		assert.Equal(t, s.Version, got.Version)
		assert.Nil(t, got.Line)
		assert.WithinDuration(t, s.UpdatedAt, got.UpdatedAt, time.Millisecond)
	})

	t.Run("save overwrites", func(t *testing.T) {
		s := session.New("ow")
		require.NoError(t, s.SelectMode(session.ModePlayerVsPlayer))
		require.NoError(t, repo.Save(ctx, s))
		for _, c := range []int{0, 3, 1, 4, 2} {
			require.NoError(t, s.Place(c))
		}
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.FindByID(ctx, "ow")
		require.NoError(t, err)
		assert.Equal(t, session.StateWon, got.State)
		assert.Equal(t, game.PlayerX, got.Winner)
		require.NotNil(t, got.Line)
		assert.Equal(t, game.Line{0, 1, 2}, *got.Line)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, session.New("del")))
		require.NoError(t, repo.Delete(ctx, "del"))
		_, err := repo.FindByID(ctx, "del")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemorySessionRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySessionRepository(time.Hour))
}

func TestMemorySessionRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(time.Minute).(*memorySessionRepository)
	now := time.Now()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(ctx, session.New("a")))
	require.NoError(t, repo.Save(ctx, session.New("b")))
	_, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	got, err := repo.FindByID(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)

	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemorySessionRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(0)
	s := session.New("iso")
	require.NoError(t, repo.Save(ctx, s))

	s.Board[0] = game.PlayerX
	got, err := repo.FindByID(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, game.None, got.Board[0])
}

func newSQLiteRepository(t *testing.T, ttl time.Duration) *sqliteSessionRepository {
	t.Helper()
	ctx := context.Background()
	conn, err := db.LocalConnect(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.InitializeSchema(ctx, conn))
	return NewSQLiteSessionRepository(conn, ttl).(*sqliteSessionRepository)
}

func TestSQLiteSessionRepository(t *testing.T) {
	exerciseRepository(t, newSQLiteRepository(t, time.Hour))
}

func TestSQLiteSessionRepositoryPurge(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t, time.Minute)

	stale := session.New("stale")
	stale.UpdatedAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, repo.Save(ctx, stale))
	require.NoError(t, repo.Save(ctx, session.New("live")))

	_, err := repo.FindByID(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindByID(ctx, "live")
	assert.NoError(t, err)
}

func TestRedisSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	exerciseRepository(t, NewRedisSessionRepository(rdb, time.Hour))

	t.Run("ttl applied", func(t *testing.T) {
		repo := NewRedisSessionRepository(rdb, time.Minute)
		require.NoError(t, repo.Save(ctx, session.New("ttl")))
		ttl, err := rdb.TTL(ctx, sessionKey("ttl")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
