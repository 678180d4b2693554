// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// EnvFileVar names the dotenv file Load reads. Unset means ".env" if it
// exists; empty disables the file.
const EnvFileVar = "REGISTRY_ENV_FILE"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration
type Config struct {
	Addr          string        `env:"REGISTRY_ADDR"           envDefault:":8080"`
	Storage       string        `env:"REGISTRY_STORAGE"        envDefault:"memory"`
	RedisURL      string        `env:"REGISTRY_REDIS_URL"`
	ProgramID     string        `env:"REGISTRY_PROGRAM_ID"     envDefault:"v3MbKaZSQJrwZWUz81cQ3kc8XvMsiNNxZjM3vN5BB32"`
	LogLevel      string        `env:"REGISTRY_LOG_LEVEL"      envDefault:"info"`
	FaucetEnabled bool          `env:"REGISTRY_FAUCET_ENABLED" envDefault:"true"`
	MaxRetries    int           `env:"REGISTRY_MAX_RETRIES"    envDefault:"5"`
	ProcessedTTL  time.Duration `env:"REGISTRY_PROCESSED_TTL"  envDefault:"24h"`

	ShutdownTimeout time.Duration `env:"REGISTRY_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the server configuration. Variables already in
// the process environment win over the dotenv file.
func Load() (Config, error) {
	vars, err := environment()
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func environment() (map[string]string, error) {
	vars := env.ToMap(os.Environ())
	path, explicit := vars[EnvFileVar]
	if !explicit {
		path = ".env"
	}
	if path == "" {
		return vars, nil
	}

	file, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return vars, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for k, v := range file {
		if _, set := vars[k]; !set {
			vars[k] = v
		}
	}
	return vars, nil
}

// Validate checks the settings are coherent
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REGISTRY_REDIS_URL required when REGISTRY_STORAGE=redis")
		}
	default:
		return fmt.Errorf("invalid REGISTRY_STORAGE %q: must be 'memory' or 'redis'", c.Storage)
	}
	if _, err := c.Program(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("REGISTRY_MAX_RETRIES must not be negative")
	}
	return nil
}

// Program parses the configured program id
func (c Config) Program() (solana.PublicKey, error) {
	id, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid REGISTRY_PROGRAM_ID: %w", err)
	}
	return id, nil
}

// Level parses the configured log level
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid REGISTRY_LOG_LEVEL: %w", err)
	}
	return level, nil
}
