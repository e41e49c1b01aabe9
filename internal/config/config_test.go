package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("ETHOS_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ETHOS_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadFullEnvironment(t *testing.T) {
	t.Setenv("ETHOS_JWT_SECRET", "secret")
	t.Setenv("ETHOS_LISTEN_ADDR", ":8080")
	t.Setenv("ETHOS_DATABASE_URL", "postgres://localhost/ethos")
	t.Setenv("ETHOS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ETHOS_SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/ethos", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}
