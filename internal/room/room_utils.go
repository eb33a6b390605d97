package room

import (
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
)

// AddPlayer adds a player to the room and queues a state sync for it.
func (r *Room) AddPlayer(p *player.Player) {
	r.mu.Lock()
	r.Players = append(r.Players, p)
	r.mu.Unlock()

	msg, _ := json.Marshal(proto.ClientToServerMessage{Type: proto.TypeSync})
	select {
	case r.incomingMoves <- &types.PlayerMove{Player: p, Message: msg}:
	case <-r.Done:
	}
}

// RemovePlayer detaches p and reports how many players remain.
func (r *Room) RemovePlayer(p *player.Player) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Players {
		if existing == p {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	return len(r.Players)
}

// PlayerCount returns the number of attached players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// IncomingMoves returns the channel for incoming player messages.
func (r *Room) IncomingMoves() chan<- *types.PlayerMove {
	return r.incomingMoves
}
