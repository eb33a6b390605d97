package main

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/server"
	"ctchen222/tictactoe/internal/telemetry"
	"ctchen222/tictactoe/internal/validator"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger.Init(cfg.LogFormat, cfg.LogLevel)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	if err := validator.BindGin(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	repo, closer, err := newSessionRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	calculator := &bot.BotMoveCalculator{}

	// Create services
	engineService := service.NewEngineService(calculator)
	sessionService := service.NewSessionService(repo, cfg.JWTSecret, cfg.SessionTTL)

	// Create controllers
	engineController := controller.NewEngineController(engineService)
	sessionController := controller.NewSessionController(sessionService)

	// Create hub
	h := hub.NewHub(repo, calculator, cfg.BotDelay, cfg.CleanupEvery)
	hubDone := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(hubDone)
	}()

	srv := server.NewServer(h, engineController, sessionController, sessionService, cfg.AllowedOrigins)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server started", "http.addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-hubDone

	slog.Info("Server exiting")
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newSessionRepository picks the storage backend named in cfg.
func newSessionRepository(ctx context.Context, cfg *config.Config) (repository.SessionRepository, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		return repository.NewRedisSessionRepository(rdb, cfg.SessionTTL), rdb, nil

	case config.BackendSQLite:
		conn, err := db.LocalConnect(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize sqlite db: %w", err)
		}
		if err := db.InitializeSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return repository.NewSQLiteSessionRepository(conn, cfg.SessionTTL), conn, nil

	default:
		return repository.NewMemorySessionRepository(cfg.SessionTTL), nopCloser{}, nil
	}
}
