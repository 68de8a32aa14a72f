// internal/service/auth/allowlist.go
package auth

import (
	"context"
	"errors"

	"visrec-admin/internal/domain/auth"
	xerrors "visrec-admin/internal/pkg/errors"

	"go.uber.org/zap"
)

// AllowlistRepository looks up one allowlist record by exact email.
type AllowlistRepository interface {
	FindByEmail(ctx context.Context, email string) (*auth.AllowlistEntry, error)
}

type AllowlistChecker struct {
	repo   AllowlistRepository
	logger *zap.Logger
}

func NewAllowlistChecker(repo AllowlistRepository, logger *zap.Logger) *AllowlistChecker {
	return &AllowlistChecker{repo: repo, logger: logger}
}

// IsAllowed is true only when a record exists for email and its active field
// is boolean true. Lookup failures are logged and count as denied.
func (c *AllowlistChecker) IsAllowed(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}

	entry, err := c.repo.FindByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return false
	}
	if err != nil {
		c.logger.Error("error checking allowlist",
			zap.String("email", email),
			zap.Error(err),
		)
		return false
	}

	return entry.IsActive()
}
