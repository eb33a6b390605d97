package room

import (
	"context"
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/session"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

const (
	heartbeatInterval = 10 * time.Second

	// DefaultBotDelay is the pause before the computer answers a move.
	DefaultBotDelay = 500 * time.Millisecond
)

var tracer = otel.Tracer("room")

// Room owns one live session and the connections attached to it.
// The session is only touched by the run goroutine.
type Room struct {
	ID            string
	repo          repository.SessionRepository
	calculator    session.MoveCalculator
	botDelay      time.Duration
	session       *session.Session
	Players       []*player.Player
	mu            sync.Mutex
	incomingMoves chan *types.PlayerMove
	metrics       *roomMetrics
	Done          chan struct{}
	closeOnce     sync.Once
}

// NewRoom wraps s, which must already be persisted in repo.
func NewRoom(s *session.Session, repo repository.SessionRepository, calculator session.MoveCalculator, botDelay time.Duration) *Room {
	return &Room{
		ID:            s.ID,
		repo:          repo,
		calculator:    calculator,
		botDelay:      botDelay,
		session:       s,
		Players:       make([]*player.Player, 0, 1),
		incomingMoves: make(chan *types.PlayerMove, 10),
		metrics:       newRoomMetrics(),
		Done:          make(chan struct{}),
	}
}

// Start launches the room's main loop.
func (r *Room) Start() {
	go r.run()
}

// Close stops the loop and drops every connection. Safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.Done)
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, p := range r.Players {
			p.Conn.Close()
		}
	})
}

// run is the main loop for the room. It serialises client messages and the
// delayed computer move. A pending computer move is bound to the session
// version it was scheduled for, so any later transition cancels it.
func (r *Room) run() {
	ctx := context.Background()
	botTimer := time.NewTimer(r.botDelay)
	stopTimer(botTimer)
	pingTicker := time.NewTicker(heartbeatInterval)

	defer func() {
		botTimer.Stop()
		pingTicker.Stop()
	}()

	var (
		armed     bool
		scheduled uint64
	)

	for {
		if r.session.AwaitingComputer() {
			if !armed || scheduled != r.session.Version {
				stopTimer(botTimer)
				botTimer.Reset(r.botDelay)
				scheduled = r.session.Version
				armed = true
			}
		} else if armed {
			stopTimer(botTimer)
			armed = false
		}

		select {
		case <-r.Done:
			slog.Info("Room run goroutine stopping.", "room.id", r.ID)
			return

		case move := <-r.incomingMoves:
			r.HandleMessage(move.Player, move.Message)

		case <-botTimer.C:
			armed = false
			if !r.session.AwaitingComputer() || r.session.Version != scheduled {
				continue
			}
			r.playComputerMove(ctx)

		case <-pingTicker.C:
			r.mu.Lock()
			for _, p := range r.Players {
				if p.Status == player.StatusConnected {
					if err := p.Send(websocket.PingMessage, nil); err != nil {
						slog.Warn("Failed to send ping to player, assuming disconnect", "player.id", p.ID, "error", err)
					}
				}
			}
			r.mu.Unlock()
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
