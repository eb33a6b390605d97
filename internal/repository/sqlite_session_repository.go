package repository

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// sessionRow mirrors the sessions table.
type sessionRow struct {
	ID         string         `db:"id"`
	Mode       string         `db:"mode"`
	Difficulty string         `db:"difficulty"`
	State      string         `db:"state"`
	Board      string         `db:"board"`
	Turn       string         `db:"turn"`
	Winner     string         `db:"winner"`
	Line       sql.NullString `db:"line"`
	Version    int64          `db:"version"`
	UpdatedAt  int64          `db:"updated_at"` // unix nanoseconds
}

type sqliteSessionRepository struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteSessionRepository creates a new SQLite-based SessionRepository.
// The sessions table must exist; see db.InitializeSchema.
func NewSQLiteSessionRepository(db *sqlx.DB, ttl time.Duration) SessionRepository {
	return &sqliteSessionRepository{db: db, ttl: ttl, now: time.Now}
}

// Save upserts the snapshot.
func (r *sqliteSessionRepository) Save(ctx context.Context, s *session.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save")
	defer span.End()

	row, err := toRow(s)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO sessions (id, mode, difficulty, state, board, turn, winner, line, version, updated_at)
	VALUES (:id, :mode, :difficulty, :state, :board, :turn, :winner, :line, :version, :updated_at)
	ON CONFLICT(id) DO UPDATE SET
		mode = excluded.mode,
		difficulty = excluded.difficulty,
		state = excluded.state,
		board = excluded.board,
		turn = excluded.turn,
		winner = excluded.winner,
		line = excluded.line,
		version = excluded.version,
		updated_at = excluded.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByID retrieves a session, treating expired rows as missing.
func (r *sqliteSessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID")
	defer span.End()

	var row sessionRow
	query := `SELECT id, mode, difficulty, state, board, turn, winner, line, version, updated_at FROM sessions WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}
	if expired(time.Unix(0, row.UpdatedAt), r.ttl, r.now()) {
		return nil, ErrNotFound
	}
	return fromRow(&row)
}

// Delete removes a session row.
func (r *sqliteSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows idle for longer than the TTL.
func (r *sqliteSessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.PurgeExpired")
	defer span.End()

	if r.ttl <= 0 {
		return 0, nil
	}
	cutoff := r.now().Add(-r.ttl).UnixNano()
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func toRow(s *session.Session) (*sessionRow, error) {
	boardJSON, err := json.Marshal(s.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	row := &sessionRow{
		ID:         s.ID,
		Mode:       string(s.Mode),
		Difficulty: string(s.Difficulty),
		State:      string(s.State),
		Board:      string(boardJSON),
		Turn:       string(s.Turn),
		Winner:     string(s.Winner),
		Version:    int64(s.Version),
		UpdatedAt:  s.UpdatedAt.UnixNano(),
	}
	if s.Line != nil {
		lineJSON, err := json.Marshal(s.Line)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal line: %w", err)
		}
		row.Line = sql.NullString{String: string(lineJSON), Valid: true}
	}
	return row, nil
}

func fromRow(row *sessionRow) (*session.Session, error) {
	s := &session.Session{
		ID:         row.ID,
		Mode:       session.Mode(row.Mode),
		Difficulty: bot.Difficulty(row.Difficulty),
		State:      session.State(row.State),
		Turn:       game.PlayerMark(row.Turn),
		Winner:     game.PlayerMark(row.Winner),
		Version:    uint64(row.Version),
		UpdatedAt:  time.Unix(0, row.UpdatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(row.Board), &s.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if row.Line.Valid {
		var line game.Line
		if err := json.Unmarshal([]byte(row.Line.String), &line); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line: %w", err)
		}
		s.Line = &line
	}
	return s, nil
}
