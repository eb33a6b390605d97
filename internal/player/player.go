package player

import (
	"sync"
	"time"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// PlayerStatus tracks whether the client is still attached.
type PlayerStatus string

const (
	StatusConnected    PlayerStatus = "connected"
	StatusDisconnected PlayerStatus = "disconnected"
)

// Player is one client connection attached to a session.
type Player struct {
	ID        string
	SessionID string
	Conn      Connection
	Status    PlayerStatus
	LastSeen  time.Time

	writeMu sync.Mutex
}

// NewPlayer wraps conn for the given session.
func NewPlayer(id, sessionID string, conn Connection) *Player {
	return &Player{
		ID:        id,
		SessionID: sessionID,
		Conn:      conn,
		Status:    StatusConnected,
		LastSeen:  time.Now(),
	}
}

// Send serialises writes; websocket connections allow one writer at a time.
func (p *Player) Send(messageType int, data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteMessage(messageType, data)
}
