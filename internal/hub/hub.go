package hub

import (
	"context"
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/room"
	"ctchen222/tictactoe/internal/session"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// Hub tracks one room per live session and routes connections to it.
// All map access happens on the Run goroutine.
type Hub struct {
	rooms           map[string]*room.Room
	register        chan *types.RegistrationRequest
	unregister      chan *player.Player
	repo            repository.SessionRepository
	calculator      session.MoveCalculator
	botDelay        time.Duration
	cleanupInterval time.Duration
}

// NewHub creates a new hub. A cleanupInterval of zero disables the expiry sweep.
func NewHub(repo repository.SessionRepository, calculator session.MoveCalculator, botDelay, cleanupInterval time.Duration) *Hub {
	return &Hub{
		rooms:           make(map[string]*room.Room),
		register:        make(chan *types.RegistrationRequest),
		unregister:      make(chan *player.Player),
		repo:            repo,
		calculator:      calculator,
		botDelay:        botDelay,
		cleanupInterval: cleanupInterval,
	}
}

// Run serves registrations until ctx is cancelled, then closes every room.
func (h *Hub) Run(ctx context.Context) {
	var cleanup <-chan time.Time
	if h.cleanupInterval > 0 {
		ticker := time.NewTicker(h.cleanupInterval)
		defer ticker.Stop()
		cleanup = ticker.C
	}

	slog.InfoContext(ctx, "Hub started")
	for {
		select {
		case <-ctx.Done():
			for id, r := range h.rooms {
				r.Close()
				delete(h.rooms, id)
			}
			slog.Info("Hub stopped")
			return

		case req := <-h.register:
			reqCtx := req.Ctx
			if reqCtx == nil {
				reqCtx = ctx
			}
			h.handleRegister(reqCtx, req)

		case p := <-h.unregister:
			h.handleUnregister(ctx, p)

		case <-cleanup:
			h.purgeExpired(ctx)
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

// Unregister returns the unregister channel.
func (h *Hub) Unregister() chan<- *player.Player {
	return h.unregister
}
