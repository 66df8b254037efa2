package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akeren/aimaker-waitlist/internal/log"
	pkgredis "github.com/akeren/aimaker-waitlist/pkg/redis"
	"github.com/caarlos0/env/v11"
	"github.com/go-redis/redis/v8"
)

// Cache is the shared Redis connection. Consumers reach the raw client through
// RedisClientProvider.
type Cache interface {
	Ping(ctx context.Context) error
	Close() error
}

// RedisClientProvider is implemented by caches that expose their Redis client.
// The rate limiters and the redis waitlist backend share it.
type RedisClientProvider interface {
	GetClient() *redis.Client
}

var ErrCacheNotConfigured = errors.New("cache: REDIS_HOST is not set")

type CacheConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func LoadCacheConfig() (*CacheConfig, error) {
	cfg := &CacheConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse cache env: %w", err)
	}

	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.DB < 0 {
		return nil, fmt.Errorf("REDIS_DB must not be negative, got %d", cfg.DB)
	}
	return cfg, nil
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

// OpenCache connects to Redis. Unless required, a missing or unreachable server
// yields a nil cache and rate limits stay in process.
func (cc *CacheConfig) OpenCache(logger *log.Logger, required bool) (Cache, error) {
	if !cc.IsConfigured() {
		if required {
			return nil, ErrCacheNotConfigured
		}
		logger.Info("Redis is not configured; rate limits stay in memory")
		return nil, nil
	}

	redisCfg := &pkgredis.Config{
		Host:     cc.Host,
		Port:     cc.Port,
		Password: cc.Password,
		DB:       cc.DB,
	}

	cache, err := pkgredis.NewRedisCache(redisCfg)
	if err != nil {
		if required {
			logger.Error("Redis is required but unreachable", "addr", redisCfg.Addr(), "error", err)
			return nil, err
		}
		logger.Warn("Redis unreachable; rate limits stay in memory", "addr", redisCfg.Addr(), "error", err)
		return nil, nil
	}

	logger.Info("Redis connected", "addr", redisCfg.Addr(), "db", redisCfg.DB)
	return cache, nil
}

func GetRedisClient(cache Cache) *redis.Client {
	if provider, ok := cache.(RedisClientProvider); ok {
		return provider.GetClient()
	}
	return nil
}

func CloseCache(cache Cache, logger *log.Logger) {
	if cache == nil {
		return
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close Redis", "error", err)
		return
	}
	logger.Info("Redis connection closed")
}
