package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/datemap/internal/cache"
	"github.com/UnknownOlympus/datemap/internal/config"
	"github.com/UnknownOlympus/datemap/internal/repository"
)

// Open returns the cache store selected by cfg.CacheBackend and a function
// releasing its resources.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case config.BackendFile, "":
		return cache.NewFileStore(cfg.CachePath, log), func() {}, nil
	case config.BackendPostgres:
		pool, err := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
		}

		repo := repository.NewRepository(pool, log)
		if err = repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		return repo, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", cfg.CacheBackend)
	}
}
