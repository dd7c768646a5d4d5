package models

import (
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/pkg/proto"
)

// CreateGameRequest defines the body of POST /api/games. Every field is
// optional.
type CreateGameRequest struct {
	Size       int    `json:"size" binding:"omitempty,min=3,max=9"`
	Opponent   string `json:"opponent" binding:"omitempty,oneof=human bot"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	First      string `json:"first" binding:"omitempty,oneof=X O x o random"`
	// BotMark is the mark the computer plays, O unless set.
	BotMark string `json:"bot_mark" binding:"omitempty,oneof=X O x o"`
}

// CreateGameResponse carries the new game and one seat token per human mark.
type CreateGameResponse struct {
	ID    string                     `json:"id"`
	State proto.GameState            `json:"state"`
	Seats map[game.PlayerMark]string `json:"seats"`
}

// MoveRequest defines the body of POST /api/games/:id/moves.
type MoveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}
