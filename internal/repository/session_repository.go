package repository

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository.session")

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

//go:generate mockgen -source=session_repository.go -destination=mocks/mock_session_repository.go -package=mocks

// SessionRepository stores the latest snapshot of each live session.
// Saving overwrites; nothing is kept once a session expires.
type SessionRepository interface {
	Save(ctx context.Context, s *session.Session) error
	FindByID(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

func expired(updatedAt time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(updatedAt) > ttl
}
