package auth

import (
	"context"
	"errors"
	"testing"

	"visrec-admin/internal/domain/auth"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAllowlistChecker(t *testing.T) {
	repo := &fakeAllowlist{entries: map[string]*auth.AllowlistEntry{
		"on@example.com":     {Active: true},
		"off@example.com":    {Active: false},
		"string@example.com": {Active: "true"},
		"number@example.com": {Active: 1},
		"nil@example.com":    {},
	}}
	checker := NewAllowlistChecker(repo, zap.NewNop())
	ctx := context.Background()

	assert.True(t, checker.IsAllowed(ctx, "on@example.com"))
	assert.False(t, checker.IsAllowed(ctx, "off@example.com"))
	assert.False(t, checker.IsAllowed(ctx, "string@example.com"))
	assert.False(t, checker.IsAllowed(ctx, "number@example.com"))
	assert.False(t, checker.IsAllowed(ctx, "nil@example.com"))
	assert.False(t, checker.IsAllowed(ctx, "missing@example.com"))
	assert.False(t, checker.IsAllowed(ctx, ""))
}

func TestAllowlistCheckerSwallowsErrors(t *testing.T) {
	checker := NewAllowlistChecker(&fakeAllowlist{err: errors.New("permission denied")}, zap.NewNop())
	assert.False(t, checker.IsAllowed(context.Background(), "on@example.com"))
}
