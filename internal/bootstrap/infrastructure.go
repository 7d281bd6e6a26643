package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/aura-studio/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// ProvideRedisClient returns nil when REDIS_ADDR is unset; sessions then live
// in process memory.
func ProvideRedisClient(lc fx.Lifecycle, cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideSessionStore(cfg *Config, redisClient *redis.Client, logger *slog.Logger) session.Store {
	if redisClient == nil {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(cfg.SessionTTL)
	}
	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return session.NewRedisStore(redisClient, cfg.SessionTTL)
}

func ProvideSessionManager(cfg *Config, store session.Store) *session.Manager {
	return session.NewManager(store, cfg.HMACKey, cfg.CookieSecure, cfg.SessionTTL)
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideSessionStore,
		ProvideSessionManager,
	),
)
