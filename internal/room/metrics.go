package room

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type roomMetrics struct {
	moves     metric.Int64Counter
	concluded metric.Int64Counter
}

func newRoomMetrics() *roomMetrics {
	meter := otel.Meter("room")
	moves, err := meter.Int64Counter("tictactoe.moves", metric.WithDescription("Placements applied to a board"))
	if err != nil {
		slog.Warn("Failed to create moves counter", "error", err)
	}
	concluded, err := meter.Int64Counter("tictactoe.games.concluded", metric.WithDescription("Games that ended in a win or draw"))
	if err != nil {
		slog.Warn("Failed to create concluded counter", "error", err)
	}
	return &roomMetrics{moves: moves, concluded: concluded}
}

func (m *roomMetrics) recordMove(ctx context.Context, actor string, s *session.Session) {
	if m.moves == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("actor", actor)}
	if s.Mode == session.ModeVsComputer {
		attrs = append(attrs, attribute.String("difficulty", string(s.Difficulty)))
	}
	m.moves.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *roomMetrics) recordConcluded(ctx context.Context, s *session.Session) {
	if m.concluded == nil {
		return
	}
	outcome := "draw"
	if s.State == session.StateWon {
		outcome = "win_" + string(s.Winner)
	}
	m.concluded.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
