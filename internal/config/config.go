package config

import (
	"ctchen222/tictactoe/internal/validator"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	Game      Game      `yaml:"game"`
	Opponent  Opponent  `yaml:"opponent"`
	Scores    Scores    `yaml:"scores"`
	HTTP      HTTP      `yaml:"http"`
	Telemetry Telemetry `yaml:"telemetry"`
	Terminal  Terminal  `yaml:"terminal"`
}

type Game struct {
	Size  int    `yaml:"size" env:"GAME_SIZE" env-default:"3" validate:"min=3,max=9"`
	First string `yaml:"first" env:"GAME_FIRST" env-default:"X" validate:"first"`
}

type Opponent struct {
	Mode       string `yaml:"mode" env:"OPPONENT_MODE" env-default:"human" validate:"oneof=human bot"`
	Difficulty string `yaml:"difficulty" env:"OPPONENT_DIFFICULTY" env-default:"easy" validate:"oneof=easy medium hard"`
	Mark       string `yaml:"mark" env:"OPPONENT_MARK" env-default:"O" validate:"mark"`
}

type Scores struct {
	Store      string `yaml:"store" env:"SCORES_STORE" env-default:"memory" validate:"oneof=memory sqlite redis postgres"`
	Key        string `yaml:"key" env:"SCORES_KEY" env-default:"default" validate:"required"`
	SQLitePath string `yaml:"sqlite-path" env:"SCORES_SQLITE_PATH" env-default:"./scores.db"`
	RedisAddr  string `yaml:"redis-addr" env:"REDIS_CONNSTRING" env-default:"localhost:6379"`
	// PostgresDSN is required when Store is postgres.
	PostgresDSN string `yaml:"postgres-dsn" env:"DATABASE_URL" validate:"required_if=Store postgres"`
}

type HTTP struct {
	Addr      string `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	JWTSecret string `yaml:"jwt-secret" env:"JWT_SECRET" env-default:"change-me" validate:"min=8"`
	// MatchTimeout bounds how long a quick-match request waits for an opponent.
	MatchTimeout time.Duration `yaml:"match-timeout" env:"HTTP_MATCH_TIMEOUT" env-default:"30s" validate:"gt=0"`
	// SweepInterval is how often abandoned games are evicted.
	SweepInterval time.Duration `yaml:"sweep-interval" env:"HTTP_SWEEP_INTERVAL" env-default:"1m" validate:"gt=0"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
}

type Terminal struct {
	Color string `yaml:"color" env:"TERMINAL_COLOR" env-default:"auto" validate:"oneof=auto always never"`
	// Replay offers another game after each result.
	Replay bool `yaml:"replay" env:"TERMINAL_REPLAY" env-default:"false"`
}

// Load reads the YAML file at path with environment overrides. An empty path
// reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of the given .env files (./.env when none
// is given) that are not set already. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to load .env: %w", err)
	}
	return nil
}

// MustLoad - like Load, but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	if err := validator.GetValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
