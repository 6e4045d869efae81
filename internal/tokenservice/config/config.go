// Package config loads the Token Service's environment-variable
// configuration, grounded on core/config/doc.go's caarlos0/env +
// joho/godotenv pattern, replacing the gateway's YAML-file
// rest.RestConf loading since spec.md §6 calls for env-only configuration.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/jwtsign"
)

// Config holds every environment variable the Token Service reads at
// startup. Defaults mirror original_source/jwt-service's constants.
type Config struct {
	Host string `env:"JWT_SERVICE_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"JWT_SERVICE_PORT" envDefault:"8083"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	JWTSecret string `env:"JWT_SECRET,required"`

	AccessTokenExpirySeconds  int `env:"JWT_ACCESS_TOKEN_EXPIRY_SECONDS" envDefault:"900"`
	RefreshTokenExpirySeconds int `env:"JWT_REFRESH_TOKEN_EXPIRY_SECONDS" envDefault:"604800"`
}

// AccessTokenExpiry returns the access token lifetime as a time.Duration.
func (c Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.AccessTokenExpirySeconds) * time.Second
}

// RefreshTokenExpiry returns the refresh token lifetime as a time.Duration.
func (c Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.RefreshTokenExpirySeconds) * time.Second
}

// Load reads a .env file if present (ignored if missing) and populates
// Config from the process environment. It fails closed: a missing
// JWT_SECRET or a secret shorter than jwtsign.MinSecretLen is a startup
// error, never a silently-weak default.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, apierr.Wrap(apierr.KindInvalidRequest, "failed to load token service configuration", err)
	}

	if len(c.JWTSecret) < jwtsign.MinSecretLen {
		return Config{}, apierr.New(apierr.KindInvalidRequest, "JWT_SECRET must be at least 32 bytes")
	}

	return c, nil
}
