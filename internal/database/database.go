package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Jimmy200504/CalH2O/internal/config"
)

// UsersCollection holds one merged document per user.
const UsersCollection = "users"

// ErrNotFound is returned by GetDocument when the document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentStore defines the methods our persistence backends implement.
// Documents are JSON objects addressed by collection and id.
type DocumentStore interface {
	// MergeDocument upserts fields into the document. Fields not named keep
	// their stored value.
	MergeDocument(ctx context.Context, collection, id string, fields map[string]any) error
	GetDocument(ctx context.Context, collection, id string) (map[string]any, error)
	// Health returns nil when the backend is reachable.
	Health(ctx context.Context) error
	Close() error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (DocumentStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Path)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DSN)
	case "firestore":
		return NewFirestoreStore(ctx, cfg.ProjectID, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// MergeUserDocument merges the JSON fields of partial into users/{userID}.
func MergeUserDocument(ctx context.Context, store DocumentStore, userID string, partial any) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	fields, err := toFields(partial)
	if err != nil {
		return err
	}
	if err := store.MergeDocument(ctx, UsersCollection, userID, fields); err != nil {
		return fmt.Errorf("merge %s/%s: %w", UsersCollection, userID, err)
	}
	return nil
}

func toFields(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding document: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return fields, nil
}
