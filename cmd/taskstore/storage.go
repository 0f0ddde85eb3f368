package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/common/config"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/db"
	"github.com/kandev/taskboard/internal/task/cache"
	"github.com/kandev/taskboard/internal/task/repository"
)

const redisPingTimeout = 3 * time.Second

// provideRepository builds the repository stack: memory or SQL, optionally
// fronted by the Redis list cache. The returned cleanup closes everything
// that was opened, in reverse order.
func provideRepository(ctx context.Context, cfg *config.Config, memory bool, log *logger.Logger) (repository.Repository, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var repo repository.Repository
	if memory {
		repo = repository.NewMemoryRepository()
		log.Info("Using in-memory task repository")
	} else {
		pool, err := db.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() {
			if err := pool.Close(); err != nil {
				log.Error("failed to close database", zap.Error(err))
			}
		})

		sqlRepo, closeRepo, err := repository.Provide(pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { _ = closeRepo() })
		repo = sqlRepo
		log.Info("Database initialized",
			zap.String("driver", pool.Driver()),
			zap.String("path", cfg.Database.Path))
	}

	if cfg.Redis.Addr == "" {
		return repo, cleanup, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis not available - list cache disabled",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return repo, cleanup, nil
	}
	cleanups = append(cleanups, func() { _ = client.Close() })
	log.Info("Redis list cache enabled",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("ttl", cfg.Redis.TTLDuration()))
	return cache.New(repo, client, cfg.Redis.TTLDuration(), log), cleanup, nil
}
