package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var (
	ErrUnknownStorage = errors.New("unknown storage")
	ErrUnknownLevel   = errors.New("unknown log level")
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage    string        `yaml:"storage" env:"STORAGE" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	Redis      Redis         `yaml:"redis"`
	Board      Board         `yaml:"board"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Board struct {
	StartingPlayer int `yaml:"starting-player" env:"BOARD_STARTING_PLAYER" env-default:"0"`
}

// Load reads the config file at path, or only the environment when the file doesn't exist.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}

	if _, ok := logLevels[that.LogLevel]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, that.LogLevel)
	}

	if !entity.IsValidPlayer(that.Board.StartingPlayer) {
		return fmt.Errorf("board starting player %d: %w", that.Board.StartingPlayer, apperror.ErrInvalidPlayer)
	}

	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown names fall back to info.
func (that *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[that.LogLevel]; ok {
		return level
	}

	return slog.LevelInfo
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
