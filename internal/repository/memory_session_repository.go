package repository

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"sync"
	"time"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository keeps snapshots in process memory.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*session.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *memorySessionRepository) Save(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || expired(s.UpdatedAt, r.ttl, r.now()) {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := r.now()
	for id, s := range r.sessions {
		if expired(s.UpdatedAt, r.ttl, now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
