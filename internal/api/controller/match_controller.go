package controller

import (
	"context"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/match"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MatchController pairs anonymous players into two-player games.
type MatchController struct {
	matcher *match.MatchManager
	timeout time.Duration
}

// NewMatchController creates a MatchController. A request waits at most
// timeout for an opponent.
func NewMatchController(matcher *match.MatchManager, timeout time.Duration) *MatchController {
	return &MatchController{
		matcher: matcher,
		timeout: timeout,
	}
}

// Join handles POST /api/match.
func (mc *MatchController) Join(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), mc.timeout)
	defer cancel()

	ticket, err := mc.matcher.Join(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		response.ErrorResponse(c, http.StatusRequestTimeout, "no opponent found")
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	response.SuccessResponse(c, ticket)
}
