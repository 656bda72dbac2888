package config

import (
	env "github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once in main and
// passed into the constructors that need it.
type Config struct {
	ServerPort   int    `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./stockroom.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// Token signing settings. TokenAlgorithm must be an HMAC variant; the
	// verifier rejects tokens signed with anything else.
	TokenSecret        string `env:"TOKEN_SECRET" envDefault:"change-this-in-production"`
	TokenAlgorithm     string `env:"TOKEN_ALGORITHM" envDefault:"HS256"`
	TokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
}

// Load reads configuration from the environment, with an optional .env file
// for development. Missing variables fall back to the documented defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
