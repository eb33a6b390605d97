package repository

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Hash fields of a session key.
const (
	FieldMode       = "mode"
	FieldDifficulty = "difficulty"
	FieldState      = "state"
	FieldBoard      = "board"
	FieldTurn       = "turn"
	FieldWinner     = "winner"
	FieldLine       = "line"
	FieldVersion    = "version"
	FieldUpdatedAt  = "updated_at"
)

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository creates a new Redis-based SessionRepository.
// Keys expire after ttl of inactivity.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Save writes the snapshot and refreshes its expiry.
func (r *redisSessionRepository) Save(ctx context.Context, s *session.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save")
	defer span.End()

	boardJSON, err := json.Marshal(s.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}
	line := ""
	if s.Line != nil {
		lineJSON, err := json.Marshal(s.Line)
		if err != nil {
			return fmt.Errorf("failed to marshal line: %w", err)
		}
		line = string(lineJSON)
	}

	key := sessionKey(s.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		FieldMode, string(s.Mode),
		FieldDifficulty, string(s.Difficulty),
		FieldState, string(s.State),
		FieldBoard, boardJSON,
		FieldTurn, string(s.Turn),
		FieldWinner, string(s.Winner),
		FieldLine, line,
		FieldVersion, strconv.FormatUint(s.Version, 10),
		FieldUpdatedAt, s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session in redis: %w", err)
	}
	return nil
}

// FindByID retrieves the current session snapshot from Redis.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	s := &session.Session{
		ID:         id,
		Mode:       session.Mode(data[FieldMode]),
		Difficulty: bot.Difficulty(data[FieldDifficulty]),
		State:      session.State(data[FieldState]),
		Turn:       game.PlayerMark(data[FieldTurn]),
		Winner:     game.PlayerMark(data[FieldWinner]),
	}
	if err := json.Unmarshal([]byte(data[FieldBoard]), &s.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if raw := data[FieldLine]; raw != "" {
		var line game.Line
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line: %w", err)
		}
		s.Line = &line
	}
	if s.Version, err = strconv.ParseUint(data[FieldVersion], 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse version: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, data[FieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return s, nil
}

// Delete removes the session key.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete")
	defer span.End()

	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

// PurgeExpired is a no-op; Redis expires keys on its own.
func (r *redisSessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
