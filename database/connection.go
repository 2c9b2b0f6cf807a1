package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	connectMaxElapsed  = 30 * time.Second
	connectMaxInterval = 5 * time.Second
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a new database connection pool. The first ping is
// retried with exponential backoff so the service can start alongside the
// database container.
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	// Parse config to set timezone
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set timezone to UTC for all connections
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pingWithRetry(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func pingWithRetry(ctx context.Context, pool *pgxpool.Pool) error {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.MaxInterval = connectMaxInterval
	deadline := time.Now().Add(connectMaxElapsed)

	for attempt := 1; ; attempt++ {
		err := pool.Ping(ctx)
		if err == nil {
			return nil
		}

		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop || time.Now().Add(sleep).After(deadline) {
			return err
		}

		log.WithFields(log.Fields{
			"attempt": attempt,
			"retryIn": sleep,
		}).WithError(err).Warn("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
