package room

import (
	"context"
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to all connected players in the room.
func (r *Room) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if p.Status == player.StatusConnected {
			if err := p.Send(websocket.TextMessage, data); err != nil {
				slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Error writing message to player")
			}
		}
	}
}

// sendTo writes a message to a single player.
func (r *Room) sendTo(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := p.Send(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "room.id", r.ID, "error", err)
	}
}

// ReadPump pumps messages from the websocket connection to the room's loop.
// When the connection ends the player is handed to unregister.
func (r *Room) ReadPump(p *player.Player, unregister chan<- *player.Player) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.Conn.Close()
		r.mu.Lock()
		p.Status = player.StatusDisconnected
		r.mu.Unlock()
		slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID, "room.id", r.ID)

		select {
		case unregister <- p:
		case <-r.Done:
		}
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			return
		}

		select {
		case r.incomingMoves <- &types.PlayerMove{Player: p, Message: msg}:
		case <-r.Done:
			return
		}
	}
}
