package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/application/report"
	"github.com/shopsync/backend/internal/infrastructure/config"
)

// StatsCacheFactory creates stats caches based on configuration
type StatsCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StatsCacheFactoryOption is a functional option for configuring the factory
type StatsCacheFactoryOption func(*StatsCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStatsCacheFactory creates a new factory
func NewStatsCacheFactory(cfg config.RedisConfig, opts ...StatsCacheFactoryOption) *StatsCacheFactory {
	f := &StatsCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds a stats cache from the Redis configuration, falling back to
// the in-memory implementation when Redis cannot be reached and fallback is
// allowed.
func (f *StatsCacheFactory) Create() (report.StatsCache, error) {
	cache, err := NewRedisStatsCache(RedisCacheConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis stats cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis stats cache unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stats cache", zap.Error(err))
	return NewInMemoryStatsCache(), nil
}
