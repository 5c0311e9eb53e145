// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/askly/internal/platform/config"
	"github.com/taibuivan/askly/internal/platform/migration"
	"github.com/taibuivan/askly/internal/platform/postgres"
	redisclient "github.com/taibuivan/askly/internal/platform/redis"
	"github.com/taibuivan/askly/internal/platform/sec"
)

// Open builds the [Store] selected by cfg.SessionDriver.
//
// # Flow
//  1. Connect the driver (creating the sqlite file or applying postgres migrations).
//  2. Wrap it with [Sealed] when a SESSION_SECRET is configured.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.SessionDriver {
	case config.DriverMemory:
		store = NewMemoryStore()

	case config.DriverSQLite:
		store, err = NewSQLiteStore(ctx, cfg.SessionPath)

	case config.DriverRedis:
		client, cerr := redisclient.NewClient(ctx, cfg.RedisURL, logger)
		if cerr != nil {
			return nil, cerr
		}
		store = NewRedisStore(client, "")

	case config.DriverPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, Migrations, MigrationsDir, logger); err != nil {
			return nil, err
		}
		pool, perr := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
		if perr != nil {
			return nil, perr
		}
		store = NewPostgresStore(pool, "")

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.SessionDriver)
	}

	if err != nil {
		return nil, err
	}

	if cfg.SessionSecret != "" {
		sealer, serr := sec.NewSealer(cfg.SessionSecret)
		if serr != nil {
			_ = store.Close()
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, serr)
		}
		store = Sealed(store, sealer)
	}

	logger.Debug("session_store_opened",
		slog.String("driver", cfg.SessionDriver),
		slog.Bool("sealed", cfg.SessionSecret != ""),
	)

	return store, nil
}
