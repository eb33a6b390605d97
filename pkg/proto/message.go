package proto

import "ctchen222/tictactoe/internal/session"

// Client message types
const (
	TypeSelectMode       = "select_mode"
	TypeSelectDifficulty = "select_difficulty"
	TypeStart            = "start"
	TypeMove             = "move"
	TypeReset            = "reset"
	TypeChangeMode       = "change_mode"
	TypeSync             = "sync"
)

// Server message types
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=select_mode select_difficulty start move reset change_mode sync"`
	Mode       string `json:"mode,omitempty" validate:"required_if=Type select_mode,omitempty,oneof=pvp pvc"`
	Difficulty string `json:"difficulty,omitempty" validate:"required_if=Type select_difficulty,omitempty,difficulty"`
	Cell       *int   `json:"cell,omitempty" validate:"required_if=Type move,omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type         string           `json:"type"`
	Reason       string           `json:"reason,omitempty"`
	Session      *session.Session `json:"session,omitempty"`
	ComputerMove *int             `json:"computer_move,omitempty"`
}
