package hub

import (
	"context"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

// rejectPlayer tells the client why it cannot join, then hangs up.
func (h *Hub) rejectPlayer(ctx context.Context, p *player.Player, reason string) {
	defer p.Conn.Close()

	data, _ := json.Marshal(&proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
	if err := p.Send(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "Error sending rejection to player", "player.id", p.ID, "error", err)
	}
	slog.InfoContext(ctx, "Player rejected", "player.id", p.ID, "session.id", p.SessionID, "reason", reason)
}
