// internal/repository/postgres/allowlist_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"visrec-admin/internal/domain/auth"
	xerrors "visrec-admin/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AllowlistRepository struct {
	db *pgxpool.Pool
}

func NewAllowlistRepository(db *pgxpool.Pool) *AllowlistRepository {
	return &AllowlistRepository{db: db}
}

// FindByEmail retrieves an allowlist row by exact email
func (r *AllowlistRepository) FindByEmail(ctx context.Context, email string) (*auth.AllowlistEntry, error) {
	query := `
		SELECT email, active, updated_at
		FROM admin_allowlist
		WHERE email = $1
	`

	var (
		entry  auth.AllowlistEntry
		active bool
	)
	err := r.db.QueryRow(ctx, query, email).Scan(&entry.Email, &active, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find allowlist entry: %w", err)
	}

	entry.Active = active
	return &entry, nil
}
