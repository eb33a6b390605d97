package hub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// purgeExpired drops stored sessions that have been idle past their TTL.
func (h *Hub) purgeExpired(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "hub.purgeExpired")
	defer span.End()

	n, err := h.repo.PurgeExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Session cleanup failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session cleanup failed")
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions purged", "sessions.count", n)
	}
}
