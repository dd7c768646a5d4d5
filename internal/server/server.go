package server

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/validator"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	heartbeatInterval = 10 * time.Second
	// pongWait must exceed heartbeatInterval.
	pongWait  = 3 * heartbeatInterval
	writeWait = 5 * time.Second
)

var tracer = otel.Tracer("server")

type Server struct {
	engine   *gin.Engine
	games    service.GameService
	upgrader websocket.Upgrader

	heartbeat time.Duration
	pongWait  time.Duration
}

func NewServer(games service.GameService, gameController *controller.GameController, matchController *controller.MatchController) *Server {
	s := &Server{
		engine:    gin.New(),
		games:     games,
		heartbeat: heartbeatInterval,
		pongWait:  pongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger(), requestMetrics())
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api/games")
	api.POST("", gameController.Create)
	api.GET("/:id", gameController.Get)
	api.POST("/:id/moves", gameController.Move)
	api.POST("/:id/reset", gameController.Reset)
	api.GET("/:id/scores", gameController.Scores)
	s.engine.POST("/api/match", matchController.Join)

	s.engine.GET("/ws/games/:id", s.handleWebSocket)
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.DebugContext(c.Request.Context(), "HTTP request",
			"http.method", c.Request.Method,
			"http.path", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start),
		)
	}
}

// handleWebSocket streams a game's updates. A client holding a seat token may
// also play and reset through the same connection; without a token it only
// watches.
func (s *Server) handleWebSocket(c *gin.Context) {
	id := c.Param("id")
	token := c.Query("token")
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	mark := game.None
	if token != "" {
		var err error
		if mark, err = s.games.Seat(id, token); err != nil {
			response.ErrorResponse(c, controller.StatusCode(err), err.Error())
			return
		}
	}
	span.SetAttributes(attribute.String("player.mark", string(mark)))

	send, unsubscribe, err := s.games.Subscribe(ctx, id)
	if err != nil {
		response.ErrorResponse(c, controller.StatusCode(err), err.Error())
		return
	}
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "game.id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}
	defer conn.Close()
	wsClients.Inc()
	defer wsClients.Dec()

	seat, _ := json.Marshal(proto.SeatMessage{Type: proto.TypeSeat, Mark: mark})
	if err := conn.WriteMessage(websocket.TextMessage, seat); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(ctx, conn, send, s.heartbeat)
	}()

	s.readPump(ctx, conn, id, token, send)
	unsubscribe()
	<-done
	slog.InfoContext(ctx, "WebSocket client disconnected", "game.id", id, "player.mark", mark)
}

// readPump applies client commands until the connection fails or the peer
// stops answering pings. Rejections are queued on send for this client only.
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, id, token string, send chan<- []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				slog.InfoContext(ctx, "WebSocket peer stopped answering pings", "game.id", id)
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				slog.WarnContext(ctx, "WebSocket connection error", "game.id", id, "error", err)
			}
			return
		}

		var msg proto.ClientToServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reject(send, "malformed message")
			continue
		}
		if err := validator.GetValidator().Struct(msg); err != nil {
			reject(send, err.Error())
			continue
		}

		switch msg.Type {
		case proto.TypeMove:
			if len(msg.Position) != 2 {
				reject(send, "position must be [row, col]")
				continue
			}
			_, err = s.games.Move(ctx, id, token, msg.Position[0], msg.Position[1])
		case proto.TypeReset:
			_, err = s.games.Reset(ctx, id, token)
		}
		if err != nil {
			reject(send, err.Error())
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte, heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.WarnContext(ctx, "Failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func reject(send chan<- []byte, reason string) {
	data, _ := json.Marshal(proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
	select {
	case send <- data:
	default:
	}
}
