// internal/db/firestore.go
package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

// NewFirestoreClient connects to Firestore. Without a credentials file the
// client falls back to application default credentials.
func NewFirestoreClient(ctx context.Context, cfg FirestoreConfig) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("no Firestore project id provided")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}
