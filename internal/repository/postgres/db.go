// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const allowlistSchema = `
	CREATE TABLE IF NOT EXISTS admin_allowlist (
		email      TEXT PRIMARY KEY,
		active     BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// EnsureSchema creates the allowlist table when it is missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, allowlistSchema); err != nil {
		return fmt.Errorf("failed to ensure allowlist schema: %w", err)
	}
	return nil
}
