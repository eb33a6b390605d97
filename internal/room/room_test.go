package room

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records text frames and replays queued reads.
type fakeConn struct {
	mu        sync.Mutex
	written   [][]byte
	reads     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 10), closed: make(chan struct{})}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case m, ok := <-c.reads:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, m, nil
	case <-c.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) messages(t *testing.T) []proto.ServerToClientMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.ServerToClientMessage, 0, len(c.written))
	for _, raw := range c.written {
		var m proto.ServerToClientMessage
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) last(t *testing.T) proto.ServerToClientMessage {
	t.Helper()
	msgs := c.messages(t)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func raw(t *testing.T, m proto.ClientToServerMessage) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}

func cell(i int) *int { return &i }

func newTestRoom(t *testing.T, delay time.Duration) (*Room, repository.SessionRepository) {
	t.Helper()
	repo := repository.NewMemorySessionRepository(time.Hour)
	s := session.New("room-1")
	require.NoError(t, repo.Save(context.Background(), s))
	return NewRoom(s, repo, &bot.BotMoveCalculator{}, delay), repo
}

func TestHandleMessagePlayerVsPlayer(t *testing.T) {
	r, repo := newTestRoom(t, DefaultBotDelay)
	conn := newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	r.Players = append(r.Players, p)

	r.HandleMessage(p, raw(t, proto.ClientToServerMessage{Type: proto.TypeSelectMode, Mode: "pvp"}))
	msg := conn.last(t)
	assert.Equal(t, proto.TypeState, msg.Type)
	assert.Equal(t, session.StateInProgress, msg.Session.State)

	for _, c := range []int{0, 3, 1, 4, 2} {
		r.HandleMessage(p, raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(c)}))
	}
	msg = conn.last(t)
	assert.Equal(t, session.StateWon, msg.Session.State)
	assert.Equal(t, game.PlayerX, msg.Session.Winner)
	require.NotNil(t, msg.Session.Line)
	assert.Equal(t, game.Line{0, 1, 2}, *msg.Session.Line)

	saved, err := repo.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.Session.Version, saved.Version)
	assert.Equal(t, session.StateWon, saved.State)
}

func TestHandleMessageRejections(t *testing.T) {
	r, _ := newTestRoom(t, DefaultBotDelay)
	conn, other := newFakeConn(), newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	watcher := player.NewPlayer("p2", r.ID, other)
	r.Players = append(r.Players, p, watcher)

	tests := []struct {
		name    string
		message []byte
	}{
		{"malformed json", []byte("{")},
		{"unknown type", raw(t, proto.ClientToServerMessage{Type: "dance"})},
		{"move before mode", raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(0)})},
		{"move without cell", []byte(`{"type":"move"}`)},
		{"cell out of range", raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(9)})},
		{"start without computer mode", raw(t, proto.ClientToServerMessage{Type: proto.TypeStart})},
		{"bad difficulty", raw(t, proto.ClientToServerMessage{Type: proto.TypeSelectDifficulty, Difficulty: "expert"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := r.session.Version
			r.HandleMessage(p, tt.message)
			msg := conn.last(t)
			assert.Equal(t, proto.TypeError, msg.Type)
			assert.NotEmpty(t, msg.Reason)
			assert.Equal(t, before, r.session.Version)
		})
	}
	assert.Empty(t, other.messages(t), "errors go to the sender only")
}

func TestHandleMessageOccupiedCell(t *testing.T) {
	r, _ := newTestRoom(t, DefaultBotDelay)
	conn := newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	r.Players = append(r.Players, p)

	r.HandleMessage(p, raw(t, proto.ClientToServerMessage{Type: proto.TypeSelectMode, Mode: "pvp"}))
	r.HandleMessage(p, raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(4)}))
	r.HandleMessage(p, raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(4)}))

	msg := conn.last(t)
	assert.Equal(t, proto.TypeError, msg.Type)
	assert.Equal(t, session.ErrOccupied.Error(), msg.Reason)
	assert.Equal(t, game.PlayerO, r.session.Turn)
}

func TestSyncRepliesToRequesterOnly(t *testing.T) {
	r, _ := newTestRoom(t, DefaultBotDelay)
	conn, other := newFakeConn(), newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	r.Players = append(r.Players, p, player.NewPlayer("p2", r.ID, other))

	r.HandleMessage(p, raw(t, proto.ClientToServerMessage{Type: proto.TypeSync}))
	msg := conn.last(t)
	assert.Equal(t, proto.TypeState, msg.Type)
	assert.Equal(t, session.StateModeUnselected, msg.Session.State)
	assert.Empty(t, other.messages(t))
	assert.Zero(t, r.session.Version)
}

func send(in chan<- *types.PlayerMove, p *player.Player, message []byte) {
	in <- &types.PlayerMove{Player: p, Message: message}
}

func startComputerGame(t *testing.T, r *Room, p *player.Player) {
	t.Helper()
	in := r.IncomingMoves()
	send(in, p, raw(t, proto.ClientToServerMessage{Type: proto.TypeSelectMode, Mode: "pvc"}))
	send(in, p, raw(t, proto.ClientToServerMessage{Type: proto.TypeSelectDifficulty, Difficulty: "hard"}))
	send(in, p, raw(t, proto.ClientToServerMessage{Type: proto.TypeStart}))
}

func TestComputerAnswersAfterDelay(t *testing.T) {
	r, repo := newTestRoom(t, 20*time.Millisecond)
	conn := newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	r.Start()
	defer r.Close()
	r.AddPlayer(p)

	startComputerGame(t, r, p)
	send(r.IncomingMoves(), p, raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(0)}))

	require.Eventually(t, func() bool {
		for _, m := range conn.messages(t) {
			if m.ComputerMove != nil {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	msg := conn.last(t)
	require.NotNil(t, msg.ComputerMove)
	assert.Equal(t, 4, *msg.ComputerMove)
	assert.Equal(t, game.PlayerO, msg.Session.Board[4])
	assert.Equal(t, game.PlayerX, msg.Session.Turn)

	require.Eventually(t, func() bool {
		saved, err := repo.FindByID(context.Background(), r.ID)
		return err == nil && saved.Board[4] == game.PlayerO
	}, time.Second, 10*time.Millisecond)
}

func TestResetCancelsPendingComputerMove(t *testing.T) {
	r, _ := newTestRoom(t, 150*time.Millisecond)
	conn := newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	r.Start()
	defer r.Close()
	r.AddPlayer(p)

	startComputerGame(t, r, p)
	send(r.IncomingMoves(), p, raw(t, proto.ClientToServerMessage{Type: proto.TypeMove, Cell: cell(0)}))
	send(r.IncomingMoves(), p, raw(t, proto.ClientToServerMessage{Type: proto.TypeReset}))

	time.Sleep(400 * time.Millisecond)
	for _, m := range conn.messages(t) {
		assert.Nil(t, m.ComputerMove, "computer moved after reset")
	}
	msg := conn.last(t)
	assert.Equal(t, session.StateDifficultyPending, msg.Session.State)
	assert.Equal(t, game.Board{}, msg.Session.Board)
}

func TestReadPumpUnregistersOnDisconnect(t *testing.T) {
	r, _ := newTestRoom(t, DefaultBotDelay)
	conn := newFakeConn()
	p := player.NewPlayer("p1", r.ID, conn)
	r.Start()
	defer r.Close()
	r.AddPlayer(p)

	unregister := make(chan *player.Player, 1)
	go r.ReadPump(p, unregister)

	conn.reads <- raw(t, proto.ClientToServerMessage{Type: proto.TypeSelectMode, Mode: "pvp"})
	require.Eventually(t, func() bool {
		msgs := conn.messages(t)
		return len(msgs) > 0 && msgs[len(msgs)-1].Session != nil && msgs[len(msgs)-1].Session.State == session.StateInProgress
	}, time.Second, 10*time.Millisecond)

	close(conn.reads)
	select {
	case got := <-unregister:
		assert.Same(t, p, got)
	case <-time.After(time.Second):
		t.Fatal("player was not unregistered")
	}
	assert.Equal(t, 0, r.RemovePlayer(p))
}
