package types

import (
	"context"
	"ctchen222/tictactoe/internal/player"
)

// RegistrationRequest attaches a connection to a session's room.
type RegistrationRequest struct {
	Player    *player.Player
	SessionID string
	Ctx       context.Context
}

// PlayerMove is a raw client message queued for a room's loop.
type PlayerMove struct {
	Player  *player.Player
	Message []byte
}
