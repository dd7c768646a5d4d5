package controller

import (
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GameController handles game-related HTTP requests.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	return &GameController{
		gameService: gameService,
	}
}

// Create handles POST /api/games.
func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	// An empty body means all defaults.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := gc.gameService.Create(c.Request.Context(), &req)
	if err != nil {
		abort(c, err)
		return
	}

	response.CreatedResponse(c, resp)
}

// Get handles GET /api/games/:id.
func (gc *GameController) Get(c *gin.Context) {
	state, err := gc.gameService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// Move handles POST /api/games/:id/moves.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := gc.gameService.Move(c.Request.Context(), c.Param("id"), bearerToken(c), *req.Row, *req.Col)
	if err != nil {
		abort(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// Reset handles POST /api/games/:id/reset.
func (gc *GameController) Reset(c *gin.Context) {
	state, err := gc.gameService.Reset(c.Request.Context(), c.Param("id"), bearerToken(c))
	if err != nil {
		abort(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// Scores handles GET /api/games/:id/scores.
func (gc *GameController) Scores(c *gin.Context) {
	scores, err := gc.gameService.Scores(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}

	response.SuccessResponse(c, scores)
}

func bearerToken(c *gin.Context) string {
	token, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return strings.TrimSpace(token)
}

// StatusCode maps service and engine errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, game.ErrCellOccupied), errors.Is(err, game.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, game.ErrOutOfBounds), errors.Is(err, game.ErrInvalidSize), errors.Is(err, game.ErrInvalidMark):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Request failed", "http.path", c.FullPath(), "error", err)
	}
	response.ErrorResponse(c, code, err.Error())
}
