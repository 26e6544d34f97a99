package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS game_snapshots (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres implements Store on a single upsert table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to Postgres and ensures the snapshot table exists.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, createSnapshotsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	row := p.pool.QueryRow(ctx, "SELECT value FROM game_snapshots WHERE key = $1", key)

	err := row.Scan(&value)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("failed to get snapshot: %w", err)
		}
	}

	return value, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO game_snapshots (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
