package main

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/match"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/server"
	"ctchen222/tictactoe/internal/telemetry"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg := config.MustLoad(*configPath)
	ctx := context.Background()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(logger.Options{Level: cfg.LogLevel, Output: os.Stdout, Otel: cfg.Telemetry.Enabled})
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Score store: memory, sqlite or redis
	scores, closeScores, err := repository.OpenScoreRepository(ctx, cfg.Scores)
	if err != nil {
		slog.Error("failed to open score store", "scores.store", cfg.Scores.Store, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeScores(); err != nil {
			slog.Error("Error closing score store", "error", err)
		}
	}()

	// Create services and controllers
	gameService := service.NewGameService(scores, []byte(cfg.HTTP.JWTSecret))
	gameController := controller.NewGameController(gameService)

	// Background workers stop with the server
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go gameService.Janitor(bgCtx, cfg.HTTP.SweepInterval)

	// Quick match pairs anonymous players into human games
	matcher := match.NewMatchManager(func(ctx context.Context) (*models.CreateGameResponse, error) {
		return gameService.Create(ctx, &models.CreateGameRequest{Size: cfg.Game.Size, First: "X"})
	})
	go matcher.Run(bgCtx)
	matchController := controller.NewMatchController(matcher, cfg.HTTP.MatchTimeout)

	// Create the Gin-based server
	srv := server.NewServer(gameService, gameController, matchController)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
