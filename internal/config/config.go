// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables, so ETHOS_JWT_SECRET
// becomes the key "jwt_secret".
const envPrefix = "ETHOS_"

// ErrMissingSecret is returned when no signing secret is configured. This is
// the one unrecoverable configuration error: the process must refuse to
// start without it.
var ErrMissingSecret = errors.New("ETHOS_JWT_SECRET must be set")

// Config holds everything the service needs at startup. The signing secret
// is loaded once here and never rotated at runtime.
type Config struct {
	ListenAddr  string        // HTTP listen address
	DatabaseURL string        // Postgres DSN; when set, the Postgres store is used
	RedisURL    string        // Redis URL; fallback store and event transport
	JWTSecret   string        // HMAC signing secret for session tokens
	SessionTTL  time.Duration // Session token lifetime
}

// Load reads configuration from ETHOS_-prefixed environment variables and
// applies defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{
		ListenAddr:  k.String("listen_addr"),
		DatabaseURL: k.String("database_url"),
		RedisURL:    k.String("redis_url"),
		JWTSecret:   k.String("jwt_secret"),
		SessionTTL:  k.Duration("session_ttl"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":9000"
	}
	if cfg.SessionTTL == 0 {
		// Matches the 24-hour promise in the canonical login message.
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}

	return cfg, nil
}
