package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "rewards"

// DB wraps the pgx pool every repository queries through
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool and verifies it with a ping
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Stored timestamps are UTC; mission days are cut in Go with the configured location
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", StorageError(err))
	}

	db := &DB{Pool: pool}
	if err := db.Healthy(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Healthy pings the database, mapping failures to the storage error taxonomy
func (db *DB) Healthy(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", StorageError(err))
	}
	return nil
}
