package proto

import (
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/score"
)

// Message types exchanged over the game WebSocket.
const (
	TypeMove   = "move"
	TypeReset  = "reset"
	TypeUpdate = "update"
	TypeError  = "error"
	TypeSeat   = "seat"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset"`
	Position []int  `json:"position,omitempty" validate:"omitempty,len=2"`
}

// GameState is the public view of a game, shared by the REST API and the
// WebSocket updates.
type GameState struct {
	ID     string              `json:"id"`
	Size   int                 `json:"size"`
	Board  [][]game.PlayerMark `json:"board"`
	Turn   game.PlayerMark     `json:"turn"`
	Status game.Status         `json:"status"`
	Winner game.PlayerMark     `json:"winner,omitempty"`
	Moves  int                 `json:"moves"`
	Scores score.Scores        `json:"scores"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string     `json:"type"`
	Reason string     `json:"reason,omitempty"`
	Game   *GameState `json:"game,omitempty"`
}

// SeatMessage tells a freshly connected client which mark it plays. Mark is
// empty for spectators.
type SeatMessage struct {
	Type string          `json:"type"`
	Mark game.PlayerMark `json:"mark"`
}
