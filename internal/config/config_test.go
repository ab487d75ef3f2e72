package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/allowancehub_test?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "*", cfg.Server.CORSOrigin)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, time.Minute, cfg.Badges.CatalogCacheTTL)
	assert.Equal(t, "activity", cfg.Badges.BonusCategory)
	assert.False(t, cfg.IsProduction())
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/allowancehub?sslmode=disable")
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("BADGE_CATALOG_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Second, cfg.Badges.CatalogCacheTTL)
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Environment: "development"},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsRedisWithoutURL(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Environment: "development"},
		Database: DatabaseConfig{URL: "postgres://localhost/db"},
		Cache:    CacheConfig{Provider: "redis"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestValidateRejectsUnknownEnvironment(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Environment: "qa2"},
		Database: DatabaseConfig{URL: "postgres://localhost/db"},
	}
	assert.Error(t, cfg.Validate())
}
