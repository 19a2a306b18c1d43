package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/petclinic/records/internal/config"
	"github.com/petclinic/records/internal/repo"
)

// store bundles the holder repository with the handles needed around it.
type store struct {
	holders repo.HolderRepo
	// sqlDB is a database/sql view of the same database, used by goose.
	sqlDB *sql.DB
	// collectors report connection statistics for /metrics.
	collectors []prometheus.Collector
	close      func()
}

// openStore connects to the configured backend and verifies it is reachable.
func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := repo.OpenSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		return &store{
			holders:    repo.NewSQLiteHolderRepo(db),
			sqlDB:      db,
			collectors: []prometheus.Collector{collectors.NewDBStatsCollector(db, "sqlite")},
			close:      func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		return &store{
			holders:    repo.NewHolderRepo(pool),
			sqlDB:      db,
			collectors: []prometheus.Collector{repo.NewPoolCollector(pool)},
			close: func() {
				_ = db.Close()
				pool.Close()
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
}
