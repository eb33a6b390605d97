package hub

import (
	"context"
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/room"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleRegister attaches the player to the session's room, loading the
// session from the repository when no room is live for it yet.
func (h *Hub) handleRegister(ctx context.Context, req *types.RegistrationRequest) {
	ctx, span := tracer.Start(ctx, "hub.handleRegister", trace.WithAttributes(
		attribute.String("player.id", req.Player.ID),
		attribute.String("session.id", req.SessionID),
	))
	defer span.End()

	p := req.Player
	if existingRoom, ok := h.rooms[req.SessionID]; ok {
		existingRoom.AddPlayer(p)
		go existingRoom.ReadPump(p, h.unregister)
		slog.InfoContext(ctx, "Player joined live room", "player.id", p.ID, "room.id", existingRoom.ID)
		return
	}

	s, err := h.repo.FindByID(ctx, req.SessionID)
	if err != nil {
		reason := "internal error"
		if errors.Is(err, repository.ErrNotFound) {
			reason = "session not found"
		} else {
			slog.ErrorContext(ctx, "Could not load session", "session.id", req.SessionID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not load session")
		}
		h.rejectPlayer(ctx, p, reason)
		return
	}

	newRoom := room.NewRoom(s, h.repo, h.calculator, h.botDelay)
	h.rooms[s.ID] = newRoom
	newRoom.Start()
	newRoom.AddPlayer(p)
	go newRoom.ReadPump(p, h.unregister)
	slog.InfoContext(ctx, "Room opened", "room.id", newRoom.ID, "player.id", p.ID, "session.version", s.Version)
}

// handleUnregister detaches the player and closes its room once empty.
func (h *Hub) handleUnregister(ctx context.Context, p *player.Player) {
	r, ok := h.rooms[p.SessionID]
	if !ok {
		return
	}
	if r.RemovePlayer(p) > 0 {
		slog.InfoContext(ctx, "Player left room", "player.id", p.ID, "room.id", r.ID)
		return
	}
	r.Close()
	delete(h.rooms, p.SessionID)
	slog.InfoContext(ctx, "Room closed due to no players", "room.id", r.ID)
}
