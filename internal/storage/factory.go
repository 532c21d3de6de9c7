package storage

import (
	"context"
	"fmt"

	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/config"
)

// New opens the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "file":
		return NewFileStorage(cfg.DataFile, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.PostgresDSN, logger)
	case "redis":
		return NewRedisStorage(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
