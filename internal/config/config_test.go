package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/unitex")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL())
	assert.Equal(t, time.Minute, cfg.LeaderboardCacheTTL())
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_JWTTTLFallback(t *testing.T) {
	cfg := &Config{JWTTTLHours: 0}
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL())
	cfg.JWTTTLHours = 2
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL())
}
