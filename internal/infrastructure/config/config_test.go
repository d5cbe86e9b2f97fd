package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "shopsync-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Equal(t, 250, cfg.Shopify.PageSize)
	assert.Equal(t, 4, cfg.Shopify.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Shopify.RetryBaseDelay)
	assert.Equal(t, 3, cfg.Scheduler.WorkerCount)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.SyncInterval)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)

	// CORS origins must not default to a wildcard
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("valid default config", func(t *testing.T) {
		assert.NoError(t, valid().validate())
	})

	t.Run("idle conns exceed open conns", func(t *testing.T) {
		cfg := valid()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("page size out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Shopify.PageSize = 500
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires database password", func(t *testing.T) {
		cfg := valid()
		cfg.App.Env = "production"
		cfg.Database.SSLMode = "require"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		cfg := valid()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("production rejects wildcard CORS origin", func(t *testing.T) {
		cfg := valid()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "shopsync",
		Password: "p@ss/word",
		DBName:   "shopsync",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6379}
	assert.Equal(t, "cache.internal:6379", r.Addr())
}
