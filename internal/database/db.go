// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool from DATABASE_URL, or composes the connection
// string from the individual POSTGRES_* variables when it is unset.
func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("POSTGRES_USER"),
			os.Getenv("POSTGRES_PASSWORD"),
			os.Getenv("PG_HOST"),
			os.Getenv("PG_PORT"),
			os.Getenv("PG_DATABASE"),
		)
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the club tables when they do not exist yet. Rounds
// deliberately carry no foreign key to sessions: the cascade delete is an
// application-level transaction, and orphaned rounds from a partial failure
// must remain readable (the statistics fold skips them).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS club_players (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			avatar text NOT NULL DEFAULT '',
			joined_at timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS club_sessions (
			id uuid PRIMARY KEY,
			player_ids uuid[] NOT NULL,
			is_active boolean NOT NULL DEFAULT true,
			start_time timestamptz NOT NULL DEFAULT NOW(),
			end_time timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS club_rounds (
			id uuid PRIMARY KEY,
			session_id uuid NOT NULL,
			scores jsonb NOT NULL,
			tags jsonb,
			roles jsonb,
			ts timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS club_rounds_session_idx ON club_rounds (session_id)`,
		`CREATE TABLE IF NOT EXISTS club_round_events (
			id bigserial PRIMARY KEY,
			round_id uuid NOT NULL,
			session_id uuid NOT NULL,
			payload jsonb NOT NULL,
			recorded_at timestamptz NOT NULL DEFAULT NOW()
		)`,
	}
	for _, q := range stmts {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// Store wraps the pool with the club's document operations. It satisfies
// ledger.Store and feeds the watch hub's snapshot loads.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
