package room

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/internal/validator"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from a player. It acts as a dispatcher.
// Rejected actions leave the session untouched and are reported to the sender only.
func (r *Room) HandleMessage(p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(context.Background(), "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, p, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, p, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	var err error
	switch message.Type {
	case proto.TypeSync:
		r.sendTo(ctx, p, r.stateMessage(nil))
		return
	case proto.TypeSelectMode:
		err = r.session.SelectMode(session.Mode(message.Mode))
	case proto.TypeSelectDifficulty:
		var d bot.Difficulty
		if d, err = bot.ParseDifficulty(message.Difficulty); err == nil {
			err = r.session.SelectDifficulty(d)
		}
	case proto.TypeStart:
		err = r.session.Start()
	case proto.TypeMove:
		if message.Cell == nil {
			err = session.ErrOutOfBounds
			break
		}
		span.SetAttributes(attribute.Int("move.cell", *message.Cell))
		if err = r.session.Place(*message.Cell); err == nil {
			r.metrics.recordMove(ctx, "human", r.session)
		}
	case proto.TypeReset:
		r.session.Reset()
	case proto.TypeChangeMode:
		r.session.ChangeMode()
	}

	if err != nil {
		slog.InfoContext(ctx, "Action rejected", "player.id", p.ID, "room.id", r.ID, "message.type", message.Type, "error", err)
		span.SetAttributes(attribute.Bool("action.valid", false))
		r.sendError(ctx, p, err.Error())
		return
	}
	span.SetAttributes(attribute.Bool("action.valid", true))
	r.commit(ctx, nil)
}

func (r *Room) sendError(ctx context.Context, p *player.Player, reason string) {
	r.sendTo(ctx, p, &proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
}
