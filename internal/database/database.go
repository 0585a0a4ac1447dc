package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres wraps a pgxpool.Pool for the relational contact store.
type Postgres struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (db *Postgres) Pool() *pgxpool.Pool {
	return db.pool
}

// NewPostgres creates a new database connection pool and verifies it with a ping.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("postgres connected")

	return &Postgres{pool: pool}, nil
}

// Ping checks that the database is reachable.
func (db *Postgres) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (db *Postgres) Close(context.Context) error {
	db.pool.Close()
	slog.Info("postgres connection closed")
	return nil
}
