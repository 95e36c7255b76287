// Package database persists game records to Postgres.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared pool. It stays nil when no database is configured.
var DB *pgxpool.Pool

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id            UUID PRIMARY KEY,
	room_code     TEXT NOT NULL,
	initial_state JSONB,
	final_state   JSONB,
	winner_id     TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at      TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS game_snapshots (
	game_id  UUID NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	version  BIGINT NOT NULL,
	checksum TEXT NOT NULL,
	state    JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, version)
);`

// ConnectDB opens the pool, checks it and creates missing tables.
func ConnectDB(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	DB = pool
	logrus.Info("connected to postgres")
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}
