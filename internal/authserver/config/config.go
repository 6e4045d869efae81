// Package config loads the Authorization Server's environment-variable
// configuration, mirroring internal/tokenservice/config's caarlos0/env +
// joho/godotenv pattern.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/johnbasrai/identityplane/internal/apierr"
)

type Config struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8082"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// StateSecret signs the CSRF state cookie consent.StateSigner issues.
	// It reuses the same minimum-length discipline as the Token Service's
	// JWT secret even though nothing here signs a JWT.
	StateSecret string `env:"OAUTH_STATE_SECRET,required"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, apierr.Wrap(apierr.KindInvalidRequest, "failed to load authorization server configuration", err)
	}

	if len(c.StateSecret) < 32 {
		return Config{}, apierr.New(apierr.KindInvalidRequest, "OAUTH_STATE_SECRET must be at least 32 bytes")
	}

	return c, nil
}
