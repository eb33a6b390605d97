package room

import (
	"context"
	"ctchen222/tictactoe/pkg/proto"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// playComputerMove lets the calculator answer for the computer side.
func (r *Room) playComputerMove(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.playComputerMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("bot.difficulty", string(r.session.Difficulty)),
	))
	defer span.End()

	cell, err := r.session.PlaceComputerMove(r.calculator)
	if err != nil {
		slog.ErrorContext(ctx, "Computer could not move", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer could not move")
		return
	}
	span.SetAttributes(attribute.Int("move.cell", cell))
	r.metrics.recordMove(ctx, "computer", r.session)
	r.commit(ctx, &cell)
}

// commit persists the session and pushes the new state to every player.
func (r *Room) commit(ctx context.Context, computerMove *int) {
	if err := r.repo.Save(ctx, r.session); err != nil {
		slog.ErrorContext(ctx, "Failed to save session", "room.id", r.ID, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
	if r.session.Concluded() {
		r.metrics.recordConcluded(ctx, r.session)
		slog.InfoContext(ctx, "Game concluded", "room.id", r.ID, "session.state", r.session.State, "session.winner", r.session.Winner)
	}
	r.Broadcast(ctx, r.stateMessage(computerMove))
}

func (r *Room) stateMessage(computerMove *int) *proto.ServerToClientMessage {
	return &proto.ServerToClientMessage{
		Type:         proto.TypeState,
		Session:      r.session.Clone(),
		ComputerMove: computerMove,
	}
}
