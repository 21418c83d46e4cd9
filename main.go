package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-leaderboard/internal"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/config"
)

const configFile = "config.yml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tictactoe-leaderboard: %v\n", err)
		os.Exit(1)
	}
}

// run loads config.yml from the working directory, falling back to the
// environment, and serves until a shutdown signal arrives.
func run() error {
	baseDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	conf, err := config.Load(filepath.Join(baseDir, configFile))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.SlogLevel()}))
	logger.Info("config loaded", "storage", conf.Storage, "log_level", conf.LogLevel)

	if err = app.RunApp(logger, conf); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}
