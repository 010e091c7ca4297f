package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS review_runs (
		id                UUID PRIMARY KEY,
		skill_name        TEXT NOT NULL,
		skill_path        TEXT NOT NULL,
		iteration         INT NOT NULL,
		average_score     INT NOT NULL,
		description_score INT NOT NULL,
		content_score     INT NOT NULL,
		validation_errors TEXT[] NOT NULL DEFAULT '{}',
		suggestions       TEXT[] NOT NULL DEFAULT '{}',
		passed            BOOLEAN NOT NULL,
		duration_ms       BIGINT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (skill_path, iteration)
	);
	CREATE INDEX IF NOT EXISTS review_runs_skill_path_idx ON review_runs (skill_path, iteration DESC);
`

// Migrate создает таблицы, если их нет. Идемпотентно.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
