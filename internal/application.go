package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/config"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/events"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/repository"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-leaderboard/transport/rest"
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

	var (
		sessionRepo repository.SessionRepository
		broker      events.Broker
	)

	switch conf.Storage {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		sessionRepo = repository.NewSessionRepository(redisStorage, conf.SessionTTL)
		broker = events.NewRedisBroker(logger, redisStorage)
	default:
		sessionRepo = repository.NewMemorySessionRepository()
		broker = events.NewHub(logger)
	}

	log.Info("Storage selected", "storage", conf.Storage)

	sessions := usecase.NewSessionManager(logger, sessionRepo, broker, conf.Board.StartingPlayer)
	server := rest.New(logger, sessions, broker)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err := server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
