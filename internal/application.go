package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/snakeladder-backend/internal/config"
	"github.com/rocketscienceinc/snakeladder-backend/internal/dice"
	"github.com/rocketscienceinc/snakeladder-backend/internal/repository"
	"github.com/rocketscienceinc/snakeladder-backend/internal/repository/storage"
	"github.com/rocketscienceinc/snakeladder-backend/internal/usecase"
	"github.com/rocketscienceinc/snakeladder-backend/transport/rest"
	"github.com/rocketscienceinc/snakeladder-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	die, err := dice.NewRandom()
	if err != nil {
		return fmt.Errorf("could not seed dice: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage, conf.SessionTTL)
	eventBus := repository.NewEventBus(logger, redisStorage)

	gameUseCase, err := usecase.NewGameManager(logger, gameRepo, eventBus, die, usecase.Rules{
		Side:        conf.Board.Side,
		CellSize:    conf.Board.CellSize,
		Transitions: conf.Board.Transitions(),
	})
	if err != nil {
		return fmt.Errorf("invalid board configuration: %w", err)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameUseCase)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
