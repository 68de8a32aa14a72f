// internal/repository/firestore/allowlist_repo.go
package firestore

import (
	"context"
	"fmt"

	"visrec-admin/internal/domain/auth"
	xerrors "visrec-admin/internal/pkg/errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AllowlistRepository reads allowlist documents whose id is the email.
type AllowlistRepository struct {
	client     *firestore.Client
	collection string
}

func NewAllowlistRepository(client *firestore.Client, collection string) *AllowlistRepository {
	if collection == "" {
		collection = "allowlist"
	}
	return &AllowlistRepository{client: client, collection: collection}
}

// FindByEmail fetches allowlist/{email}. The active field is returned as stored
// so callers can insist on a real boolean.
func (r *AllowlistRepository) FindByEmail(ctx context.Context, email string) (*auth.AllowlistEntry, error) {
	snap, err := r.client.Collection(r.collection).Doc(email).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get allowlist document: %w", err)
	}
	if !snap.Exists() {
		return nil, xerrors.ErrNotFound
	}

	data := snap.Data()
	return &auth.AllowlistEntry{
		Email:     email,
		Active:    data["active"],
		UpdatedAt: snap.UpdateTime,
	}, nil
}
